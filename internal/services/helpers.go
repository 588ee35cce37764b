package services

// appendUnique adds id to ids unless already present. The second return
// value reports whether the slice changed.
func appendUnique(ids []uint, id uint) ([]uint, bool) {
	for _, v := range ids {
		if v == id {
			return ids, false
		}
	}
	return append(append([]uint{}, ids...), id), true
}

// removeID drops id from ids, preserving order.
func removeID(ids []uint, id uint) ([]uint, bool) {
	out := make([]uint, 0, len(ids))
	changed := false
	for _, v := range ids {
		if v == id {
			changed = true
			continue
		}
		out = append(out, v)
	}
	return out, changed
}

// intersects reports whether the two id sets share any element.
func intersects(a, b []uint) bool {
	seen := make(map[uint]struct{}, len(a))
	for _, v := range a {
		seen[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := seen[v]; ok {
			return true
		}
	}
	return false
}

// dedupe returns ids with duplicates removed, preserving first occurrence.
func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, v := range ids {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
