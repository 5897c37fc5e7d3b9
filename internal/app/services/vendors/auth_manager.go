package vendors

import (
	"context"
	"sync"
	"synclinic-service/internal/pkg/constvars"
	"time"

	"go.uber.org/zap"
)

// authenticateFunc performs one token request against the vendor and returns
// the access token plus the vendor-reported expires_in seconds (0 when the
// vendor omits it).
type authenticateFunc func(ctx context.Context) (string, int, error)

// authManager owns one adapter's token lifecycle. At most one refresh is in
// flight at a time; concurrent callers block on the mutex and re-check
// validity before issuing their own request.
type authManager struct {
	vendor       string
	authenticate authenticateFunc
	log          *zap.Logger

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

func newAuthManager(vendor string, authenticate authenticateFunc, logger *zap.Logger) *authManager {
	return &authManager{
		vendor:       vendor,
		authenticate: authenticate,
		log:          logger,
	}
}

// EnsureToken guarantees a usable system token, refreshing when the cached
// one is absent or inside the expiry skew. Provider-context authentication is
// not supported by any wired vendor and always reports false without a
// network call. The boolean is the only signal callers get; authentication
// failures are never errors.
func (m *authManager) EnsureToken(ctx context.Context, authType string) bool {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	if authType == constvars.AuthTypeProvider {
		m.log.Warn("authManager.EnsureToken provider-context authentication is not supported",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingVendorKey, m.vendor),
			zap.String(constvars.LoggingAuthTypeKey, authType),
		)
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tokenValid() {
		return true
	}

	m.log.Info("authManager.EnsureToken requesting new token",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingVendorKey, m.vendor),
	)

	token, expiresIn, err := m.authenticate(ctx)
	if err != nil || token == "" {
		m.log.Error("authManager.EnsureToken authentication failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingVendorKey, m.vendor),
			zap.Error(err),
		)
		return false
	}

	lifetime := expiresIn - constvars.TokenRefreshSkewSeconds
	if expiresIn == 0 {
		lifetime = constvars.DefaultTokenLifetimeMinutes * 60
	}
	if lifetime < 0 {
		lifetime = 0
	}

	m.accessToken = token
	m.expiresAt = time.Now().Add(time.Duration(lifetime) * time.Second)
	return true
}

// Token returns the cached access token, which may be stale; callers go
// through EnsureToken first.
func (m *authManager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accessToken
}

func (m *authManager) tokenValid() bool {
	return m.accessToken != "" && time.Now().Before(m.expiresAt)
}
