package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/oauth2"

	"github.com/tarpaulin-edu/course-service/internal/config"
	"github.com/tarpaulin-edu/course-service/internal/validator"
)

type authService struct {
	oauth  oauth2.Config
	logger *slog.Logger
	v      *validator.Validator
}

func NewAuthService(cfg config.OIDCConfig, logger *slog.Logger, v *validator.Validator) AuthService {
	return &authService{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL: strings.TrimSuffix(cfg.IssuerURL, "/") + "/oauth/token",
			},
			Scopes: []string{"openid", "profile", "email"},
		},
		logger: logger,
		v:      v,
	}
}

// Login exchanges credentials at the provider's token endpoint and returns
// the token the client should present on subsequent requests. Every
// provider-side failure collapses to ErrUnauthorized.
func (s *authService) Login(ctx context.Context, req *LoginRequest) (string, error) {
	if err := s.v.Validate(req); err != nil {
		return "", ErrInvalidRequest
	}

	token, err := s.oauth.PasswordCredentialsToken(ctx, req.Username, req.Password)
	if err != nil {
		s.logger.Info("login rejected by identity provider", "username", req.Username)
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	// Prefer the id_token; it is what the verifier middleware validates.
	if idToken, ok := token.Extra("id_token").(string); ok && idToken != "" {
		return idToken, nil
	}
	if token.AccessToken != "" {
		return token.AccessToken, nil
	}
	return "", ErrUnauthorized
}
