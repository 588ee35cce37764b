// Command seedusers provisions the local user table from identity provider
// accounts. Each configured account is logged in once via the password
// grant, its subject claim is read out of the returned token, and a user
// row with a fixed id is written. Run it once against a fresh database.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/tarpaulin-edu/course-service/internal/config"
	"github.com/tarpaulin-edu/course-service/internal/models"
	"github.com/tarpaulin-edu/course-service/internal/repositories/postgres"
	"github.com/tarpaulin-edu/course-service/pkg"
)

type seedAccount struct {
	Username string
	Role     models.UserRole
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	accounts, err := parseSeedAccounts(os.Getenv("SEED_ACCOUNTS"))
	if err != nil {
		log.Fatalf("Invalid SEED_ACCOUNTS: %v", err)
	}
	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		log.Fatal("SEED_PASSWORD is required")
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{DB: db})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}
	repo := repoManager.GetRepository()

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.OIDC.ClientID,
		ClientSecret: cfg.OIDC.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: strings.TrimSuffix(cfg.OIDC.IssuerURL, "/") + "/oauth/token",
		},
		Scopes: []string{"openid", "profile", "email"},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for i, account := range accounts {
		token, err := oauthCfg.PasswordCredentialsToken(ctx, account.Username, password)
		if err != nil {
			log.Fatalf("Login failed for %s: %v", account.Username, err)
		}

		raw := token.AccessToken
		if idToken, ok := token.Extra("id_token").(string); ok && idToken != "" {
			raw = idToken
		}
		sub, err := subjectFromToken(raw)
		if err != nil {
			log.Fatalf("Cannot read subject for %s: %v", account.Username, err)
		}

		user := &models.User{
			ID:   uint(i + 1),
			Sub:  sub,
			Role: account.Role,
		}
		if err := repo.User().Upsert(ctx, user); err != nil {
			log.Fatalf("Failed to store user %s: %v", account.Username, err)
		}
		log.Printf("Seeded user %d: %s (%s)", user.ID, account.Username, user.Role)
	}

	if err := repoManager.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// parseSeedAccounts parses "username:role,username:role,...".
func parseSeedAccounts(raw string) ([]seedAccount, error) {
	if raw == "" {
		return nil, fmt.Errorf("SEED_ACCOUNTS is required")
	}

	var accounts []seedAccount
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(entry), ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed entry %q, want username:role", entry)
		}
		role := models.UserRole(parts[1])
		if !role.IsValid() {
			return nil, fmt.Errorf("unknown role %q for %s", parts[1], parts[0])
		}
		accounts = append(accounts, seedAccount{Username: parts[0], Role: role})
	}
	return accounts, nil
}

// subjectFromToken pulls the sub claim out of a JWT without verifying the
// signature. The token came straight from the issuer over TLS, so
// verification adds nothing here.
func subjectFromToken(raw string) (string, error) {
	token, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("cannot parse token: %w", err)
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("cannot read sub claim: %w", err)
	}
	if sub == "" {
		return "", fmt.Errorf("token has no sub claim")
	}
	return sub, nil
}
