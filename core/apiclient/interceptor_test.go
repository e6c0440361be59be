package apiclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parishkit/parishkit/core/apiclient"
	"github.com/parishkit/parishkit/core/session"
	"github.com/parishkit/parishkit/pkg/broadcast"
)

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatal(msg)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestChainOrdering(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) apiclient.Interceptor {
		return func(next http.RoundTripper) http.RoundTripper {
			return apiclient.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(req)
			})
		}
	}

	base := apiclient.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		order = append(order, "base")
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})

	rt := apiclient.Chain(base, mark("first"), mark("second"))
	req := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second", "base"}, order)
}

func TestUnauthorizedInterceptor(t *testing.T) {
	t.Parallel()

	newEnv := func(t *testing.T, status int) (*apiclient.Client, *session.Manager, *session.MemoryNavigator, *httptest.Server) {
		t.Helper()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		t.Cleanup(srv.Close)

		store := session.NewMemStore()
		nav := session.NewMemoryNavigator("/dashboard")
		manager := session.NewManager(store, session.WithNavigator(nav))
		require.NoError(t, manager.Login(context.Background(), "abc.def.ghi", &session.User{ID: "1", Role: "Admin"}))

		client, err := apiclient.New(srv.URL, store,
			apiclient.WithInterceptors(
				apiclient.UnauthorizedInterceptor(manager,
					apiclient.WithWatchedBases(srv.URL),
					apiclient.WithTeardownDelay(10*time.Millisecond),
				),
			),
		)
		require.NoError(t, err)

		return client, manager, nav, srv
	}

	t.Run("401 from watched base tears the session down once", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()

		client, manager, nav, _ := newEnv(t, http.StatusUnauthorized)

		err := client.DoJSON(ctx, http.MethodGet, "/members", nil, nil)
		assert.ErrorIs(t, err, apiclient.ErrSessionExpired)

		waitFor(t, func() bool { return !manager.IsPresent(ctx) },
			"session was not torn down after the 401")
		assert.Equal(t, "/login?redirect=%2Fdashboard", nav.Location())
	})

	t.Run("concurrent 401s produce one teardown", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()

		client, manager, nav, _ := newEnv(t, http.StatusUnauthorized)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = client.DoJSON(ctx, http.MethodGet, "/members", nil, nil)
			}()
		}
		wg.Wait()

		waitFor(t, func() bool { return !manager.IsPresent(ctx) },
			"session was not torn down after concurrent 401s")

		// Give any extra scheduled teardowns time to fire, then count
		// navigations: exactly one redirect to login.
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, []string{"/login?redirect=%2Fdashboard"}, nav.History())
	})

	t.Run("other statuses never trigger teardown", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()

		client, manager, _, _ := newEnv(t, http.StatusInternalServerError)

		err := client.DoJSON(ctx, http.MethodGet, "/members", nil, nil)
		var apiErr *apiclient.APIError
		require.ErrorAs(t, err, &apiErr)

		time.Sleep(50 * time.Millisecond)
		assert.True(t, manager.IsPresent(ctx), "a 500 must not log the user out")
	})

	t.Run("401 from unwatched host is ignored", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		t.Cleanup(srv.Close)

		store := session.NewMemStore()
		manager := session.NewManager(store)
		require.NoError(t, manager.Login(ctx, "abc.def.ghi", &session.User{ID: "1"}))

		// Allow-list names a different backend than the one answering 401.
		client, err := apiclient.New(srv.URL, store,
			apiclient.WithInterceptors(
				apiclient.UnauthorizedInterceptor(manager,
					apiclient.WithWatchedBases("https://api.example.com"),
					apiclient.WithTeardownDelay(10*time.Millisecond),
				),
			),
		)
		require.NoError(t, err)

		_ = client.DoJSON(ctx, http.MethodGet, "/members", nil, nil)

		time.Sleep(50 * time.Millisecond)
		assert.True(t, manager.IsPresent(ctx), "an unrelated 401 must not log the user out")
	})

	t.Run("401 with no session present is absorbed", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		t.Cleanup(srv.Close)

		store := session.NewMemStore()
		nav := session.NewMemoryNavigator("/")
		manager := session.NewManager(store, session.WithNavigator(nav))

		client, err := apiclient.New(srv.URL, store,
			apiclient.WithInterceptors(
				apiclient.UnauthorizedInterceptor(manager,
					apiclient.WithWatchedBases(srv.URL),
					apiclient.WithTeardownDelay(10*time.Millisecond),
				),
			),
		)
		require.NoError(t, err)

		// Public call bounces with 401; no session exists, so no teardown.
		_ = client.DoJSON(ctx, http.MethodGet, "/members", nil, nil, apiclient.WithoutAuth())

		time.Sleep(50 * time.Millisecond)
		assert.Empty(t, nav.History(), "teardown must not run while logged out")
	})

	t.Run("broadcasts an auth error for listening UI", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		t.Cleanup(srv.Close)

		events := broadcast.NewMemoryBroadcaster[apiclient.AuthError](10)
		defer events.Close()
		sub := events.Subscribe(ctx)

		store := session.NewMemStore()
		manager := session.NewManager(store)
		require.NoError(t, manager.Login(ctx, "abc.def.ghi", &session.User{ID: "1"}))

		client, err := apiclient.New(srv.URL, store,
			apiclient.WithInterceptors(
				apiclient.UnauthorizedInterceptor(manager,
					apiclient.WithWatchedBases(srv.URL),
					apiclient.WithTeardownDelay(10*time.Millisecond),
					apiclient.WithAuthEvents(events),
				),
			),
		)
		require.NoError(t, err)

		_ = client.DoJSON(ctx, http.MethodGet, "/members", nil, nil)

		select {
		case msg := <-sub.Receive(ctx):
			assert.Equal(t, apiclient.SessionExpiredMessage, msg.Data.Message)
			assert.Equal(t, http.StatusUnauthorized, msg.Data.Status)
			assert.Equal(t, "/members", msg.Data.Path)
		case <-time.After(time.Second):
			t.Fatal("expected an auth-error broadcast")
		}
	})
}
