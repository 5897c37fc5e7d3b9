package vendors

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"synclinic-service/internal/pkg/constvars"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestEnsureTokenReusesValidToken(t *testing.T) {
	calls := 0
	manager := newAuthManager(constvars.VendorCerner, func(ctx context.Context) (string, int, error) {
		calls++
		return "token-1", 3600, nil
	}, zap.NewNop())

	assert.True(t, manager.EnsureToken(context.Background(), constvars.AuthTypeSystem))
	assert.True(t, manager.EnsureToken(context.Background(), constvars.AuthTypeSystem))
	assert.Equal(t, 1, calls, "a valid cached token must not trigger a second token request")
	assert.Equal(t, "token-1", manager.Token())
}

func TestEnsureTokenProviderContextUnsupported(t *testing.T) {
	calls := 0
	manager := newAuthManager(constvars.VendorEpic, func(ctx context.Context) (string, int, error) {
		calls++
		return "token-1", 3600, nil
	}, zap.NewNop())

	assert.False(t, manager.EnsureToken(context.Background(), constvars.AuthTypeProvider))
	assert.Equal(t, 0, calls, "provider-context auth must not reach the token endpoint")
}

func TestEnsureTokenAuthFailure(t *testing.T) {
	manager := newAuthManager(constvars.VendorCerner, func(ctx context.Context) (string, int, error) {
		return "", 0, errors.New("invalid_client")
	}, zap.NewNop())

	assert.False(t, manager.EnsureToken(context.Background(), constvars.AuthTypeSystem))
	assert.Empty(t, manager.Token())
}

func TestEnsureTokenExpirySkew(t *testing.T) {
	// expires_in below the skew leaves no usable lifetime, so the next call
	// must refresh again.
	calls := 0
	manager := newAuthManager(constvars.VendorCerner, func(ctx context.Context) (string, int, error) {
		calls++
		return "short-lived", 30, nil
	}, zap.NewNop())

	assert.True(t, manager.EnsureToken(context.Background(), constvars.AuthTypeSystem))
	assert.True(t, manager.EnsureToken(context.Background(), constvars.AuthTypeSystem))
	assert.Equal(t, 2, calls)
}

func TestEnsureTokenDefaultLifetime(t *testing.T) {
	manager := newAuthManager(constvars.VendorCerner, func(ctx context.Context) (string, int, error) {
		return "no-expiry", 0, nil
	}, zap.NewNop())

	assert.True(t, manager.EnsureToken(context.Background(), constvars.AuthTypeSystem))

	expected := time.Now().Add(constvars.DefaultTokenLifetimeMinutes * time.Minute)
	assert.WithinDuration(t, expected, manager.expiresAt, 5*time.Second)
}

func TestEnsureTokenSingleRefreshUnderConcurrency(t *testing.T) {
	calls := 0
	manager := newAuthManager(constvars.VendorCerner, func(ctx context.Context) (string, int, error) {
		calls++
		time.Sleep(10 * time.Millisecond)
		return "token-1", 3600, nil
	}, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, manager.EnsureToken(context.Background(), constvars.AuthTypeSystem))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, calls, "concurrent callers must share one in-flight refresh")
}
