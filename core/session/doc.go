// Package session holds the client-side authenticated state: a bearer token
// plus a cached user summary, persisted across restarts of the same client
// context.
//
// A session is either absent (logged out) or present (a token exists in
// storage). Validity is a derived, point-in-time property evaluated by
// core/token on each check; a present-but-expired session must be treated as
// absent for authorization purposes.
//
// # Store
//
// Store is the persistence interface. FileStore keeps the session as a single
// JSON document on disk and is the default for CLI and desktop processes;
// MemStore backs tests and ephemeral processes. Token and user summary are
// written together and cleared together, never independently mutated.
//
// # Manager
//
// Manager is the single teardown path. Login persists the credential pair
// atomically; Logout clears storage, best-effort publishes a logout broadcast
// for other execution contexts, and navigates to the login entry point.
// Logout is idempotent: a second call when already logged out is a no-op
// other than a possibly-redundant navigation.
//
//	store, _ := session.NewFileStore(path)
//	manager := session.NewManager(store,
//		session.WithNavigator(nav),
//		session.WithBroadcaster(b),
//	)
//
//	if err := manager.Login(ctx, resp.Token, &resp.User); err != nil { ... }
//	defer manager.Logout(ctx)
//
// # Monitor
//
// Monitor is a coarse liveness check: on a fixed interval, and on Resume, it
// re-checks that the token is still present in storage and forces logout when
// it has disappeared out-of-band. When a broadcaster is configured the
// monitor also reacts to logout events from other execution contexts, making
// invalidation event-driven instead of purely polling-based.
package session
