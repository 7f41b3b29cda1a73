package customers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var emailValidator = validator.New()

// IssueInput is the profile sent alongside a credential request.
type IssueInput struct {
	Email    string
	Name     string
	PhotoRef string
}

// IssueResult carries the bearer credential and the stored profile.
type IssueResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Customer  Profile   `json:"customer"`
}

// Profile is the API view of a customer.
type Profile struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	PhotoRef string    `json:"photoRef"`
}

type Service interface {
	IssueCredential(ctx context.Context, input IssueInput) (*IssueResult, error)
}

type service struct {
	repo Repository
	jwt  config.JWTConfig
	now  func() time.Time
}

func NewService(repo Repository, jwtCfg config.JWTConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if strings.TrimSpace(jwtCfg.Secret) == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	return &service{repo: repo, jwt: jwtCfg, now: time.Now}, nil
}

// IssueCredential upserts the customer profile and mints an access token for its email.
func (s *service) IssueCredential(ctx context.Context, input IssueInput) (*IssueResult, error) {
	email := auth.NormalizeEmail(input.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if err := emailValidator.Var(email, "email"); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is not a valid address")
	}

	row, err := s.repo.UpsertByEmail(ctx, &models.Customer{
		Email:    email,
		Name:     strings.TrimSpace(input.Name),
		PhotoRef: strings.TrimSpace(input.PhotoRef),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save customer")
	}

	now := s.now().UTC()
	token, err := auth.MintAccessToken(s.jwt, now, auth.AccessTokenPayload{Email: email})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return &IssueResult{
		Token:     token,
		ExpiresAt: now.Add(s.jwt.TTL()),
		Customer: Profile{
			ID:       row.ID,
			Email:    row.Email,
			Name:     row.Name,
			PhotoRef: row.PhotoRef,
		},
	}, nil
}
