package services

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// IdentityClaims are the verified claims of a federated identity token.
type IdentityClaims struct {
	UID   string
	Email string
	Name  string
}

// TokenVerifier verifies a federated identity token and returns its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*IdentityClaims, error)
}

// FirebaseService verifies Firebase ID tokens via the admin SDK.
type FirebaseService struct {
	client *auth.Client
}

// NewFirebaseService initializes the Firebase app from a service account
// credentials file (or application default credentials when empty).
func NewFirebaseService(ctx context.Context, credentialsFile string) (*FirebaseService, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth client: %w", err)
	}

	return &FirebaseService{client: client}, nil
}

// Verify checks the token's signature and expiry and extracts identity claims.
func (s *FirebaseService) Verify(ctx context.Context, idToken string) (*IdentityClaims, error) {
	token, err := s.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}

	claims := &IdentityClaims{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		claims.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		claims.Name = name
	}

	return claims, nil
}
