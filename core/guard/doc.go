// Package guard gates navigation to protected views on a point-in-time
// session validity check.
//
// Each Guard instance resolves exactly once, mirroring one application load:
// Checking transitions to Authorized or Unauthorized on the first protected
// navigation and stays there. There is no polling in the guard itself; the
// periodic liveness check lives in core/session's Monitor.
//
//	g := guard.New(validator, manager, guard.WithPublicPaths("/", "/about"))
//
//	decision := g.Check(ctx, "/dashboard/members")
//	if decision.State == guard.StateUnauthorized {
//		router.Go(decision.RedirectTo) // /login?redirect=%2Fdashboard%2Fmembers
//	}
//
// Public paths bypass the state machine entirely and always render.
package guard
