package guard_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parishkit/parishkit/core/guard"
	"github.com/parishkit/parishkit/core/session"
	"github.com/parishkit/parishkit/core/token"
)

func mintToken(t *testing.T, ttl time.Duration) string {
	t.Helper()

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		UserID: "1",
		Role:   "Admin",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func newGuard(t *testing.T, storedToken string, opts ...guard.Option) (*guard.Guard, *session.Manager) {
	t.Helper()

	store := session.NewMemStore()
	if storedToken != "" {
		require.NoError(t, store.Write(context.Background(), storedToken, &session.User{ID: "1", Role: "Admin"}))
	}

	manager := session.NewManager(store)
	return guard.New(token.NewValidator(store), manager, opts...), manager
}

func TestGuardStartsChecking(t *testing.T) {
	t.Parallel()

	g, _ := newGuard(t, "")
	assert.Equal(t, guard.StateChecking, g.State())
}

func TestGuardAuthorizesValidSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	g, _ := newGuard(t, mintToken(t, time.Hour))

	decision := g.Check(ctx, "/dashboard")
	assert.Equal(t, guard.StateAuthorized, decision.State)
	assert.Empty(t, decision.RedirectTo)
	assert.Equal(t, guard.StateAuthorized, g.State())
}

func TestGuardRedirectsWithoutSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	g, _ := newGuard(t, "")

	decision := g.Check(ctx, "/dashboard/members")
	assert.Equal(t, guard.StateUnauthorized, decision.State)
	assert.Equal(t, "/login?redirect=%2Fdashboard%2Fmembers", decision.RedirectTo)
}

func TestGuardClearsExpiredSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	g, manager := newGuard(t, mintToken(t, -time.Hour))

	decision := g.Check(ctx, "/dashboard")
	assert.Equal(t, guard.StateUnauthorized, decision.State)
	assert.False(t, manager.IsPresent(ctx), "expired credentials must not linger in storage")
}

func TestGuardResolvesOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	g, manager := newGuard(t, mintToken(t, time.Hour))

	first := g.Check(ctx, "/dashboard")
	require.Equal(t, guard.StateAuthorized, first.State)

	// A later out-of-band logout does not re-open the state machine: the
	// guard resolved for this app load, liveness is the monitor's job.
	require.NoError(t, manager.Logout(ctx))
	second := g.Check(ctx, "/dashboard")
	assert.Equal(t, guard.StateAuthorized, second.State)
}

func TestGuardPublicPathsBypass(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	g, _ := newGuard(t, "", guard.WithPublicPaths("/", "/about", "/give"))

	for _, path := range []string{"/", "/about", "/about/staff", "/give"} {
		decision := g.Check(ctx, path)
		assert.Equal(t, guard.StateAuthorized, decision.State, "path %s should be public", path)
	}

	// Bypassing never consumed the state machine.
	assert.Equal(t, guard.StateChecking, g.State())

	decision := g.Check(ctx, "/dashboard")
	assert.Equal(t, guard.StateUnauthorized, decision.State)
}

func TestStateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "checking", guard.StateChecking.String())
	assert.Equal(t, "authorized", guard.StateAuthorized.String())
	assert.Equal(t, "unauthorized", guard.StateUnauthorized.String())
}
