package customers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "storefront", ExpirationMinutes: 300}

func newTestRepo(t *testing.T) Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Customer{}))
	return NewRepository(conn)
}

func TestIssueCredentialUpsertsAndMints(t *testing.T) {
	repo := newTestRepo(t)
	svc, err := NewService(repo, testJWT)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := svc.IssueCredential(ctx, IssueInput{Email: "Alice@Example.com", Name: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", first.Customer.Email)
	assert.WithinDuration(t, time.Now().Add(5*time.Hour), first.ExpiresAt, time.Minute)

	claims, err := auth.ParseAccessToken(testJWT, first.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Email)

	second, err := svc.IssueCredential(ctx, IssueInput{Email: "alice@example.com", Name: "Alice B", PhotoRef: "img/a.png"})
	require.NoError(t, err)
	assert.Equal(t, first.Customer.ID, second.Customer.ID, "same email keeps the same customer")
	assert.Equal(t, "Alice B", second.Customer.Name)
	assert.Equal(t, "img/a.png", second.Customer.PhotoRef)
}

func TestIssueCredentialValidation(t *testing.T) {
	svc, err := NewService(newTestRepo(t), testJWT)
	require.NoError(t, err)

	for _, email := range []string{"", "   ", "not-an-email"} {
		_, err := svc.IssueCredential(context.Background(), IssueInput{Email: email})
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "email %q", email)
	}
}

type failingRepo struct{}

func (failingRepo) UpsertByEmail(context.Context, *models.Customer) (*models.Customer, error) {
	return nil, errors.New("db down")
}

func (failingRepo) FindByEmail(context.Context, string) (*models.Customer, error) {
	return nil, errors.New("db down")
}

func TestIssueCredentialStoreFailure(t *testing.T) {
	svc, err := NewService(failingRepo{}, testJWT)
	require.NoError(t, err)

	_, err = svc.IssueCredential(context.Background(), IssueInput{Email: "a@x.com"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
}

func TestNewServiceRequiresSecret(t *testing.T) {
	_, err := NewService(failingRepo{}, config.JWTConfig{})
	assert.Error(t, err)
	_, err = NewService(nil, testJWT)
	assert.Error(t, err)
}
