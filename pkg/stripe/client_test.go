package stripe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/config"
)

func TestNewClientValidatesKeyPrefix(t *testing.T) {
	ctx := context.Background()

	_, err := NewClient(ctx, config.StripeConfig{APIKey: "", Env: "test"}, nil)
	require.ErrorIs(t, err, errAPIKeyRequired)

	_, err = NewClient(ctx, config.StripeConfig{APIKey: "sk_live_123", Env: "test"}, nil)
	require.Error(t, err)

	_, err = NewClient(ctx, config.StripeConfig{APIKey: "sk_test_123", Env: "staging"}, nil)
	require.ErrorIs(t, err, errInvalidStripeEnv)

	client, err := NewClient(ctx, config.StripeConfig{APIKey: "sk_test_123", Env: ""}, nil)
	require.NoError(t, err)
	assert.Equal(t, testEnv, client.Environment())
	assert.False(t, client.IsLive())
	assert.NotNil(t, client.API())
}

func TestNewClientLive(t *testing.T) {
	client, err := NewClient(context.Background(), config.StripeConfig{APIKey: "rk_live_abc", Env: "LIVE"}, nil)
	require.NoError(t, err)
	assert.True(t, client.IsLive())
}

func TestGuardLiveMode(t *testing.T) {
	ctx := context.Background()
	live, err := NewClient(ctx, config.StripeConfig{APIKey: "sk_live_abc", Env: "live"}, nil)
	require.NoError(t, err)
	test, err := NewClient(ctx, config.StripeConfig{APIKey: "sk_test_abc", Env: "test"}, nil)
	require.NoError(t, err)

	require.ErrorIs(t, GuardLiveMode(live, false), errLiveOutsideProd)
	require.NoError(t, GuardLiveMode(live, true))
	require.NoError(t, GuardLiveMode(test, false))
	require.NoError(t, GuardLiveMode(test, true))
}

func TestNilClientAccessors(t *testing.T) {
	var client *Client
	assert.Nil(t, client.API())
	assert.Equal(t, "", client.Environment())
	assert.False(t, client.IsLive())
}
