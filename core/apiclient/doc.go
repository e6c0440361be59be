// Package apiclient produces outgoing requests that carry the current
// session's credential, and centralizes authorization-failure handling in an
// explicit interceptor chain on one shared client.
//
// Every outbound call flows through an ordered list of interceptors wrapping
// the underlying http.RoundTripper, each able to inspect the response. This
// preserves the "see everything" property of a global interceptor without
// mutating ambient process state: components that need the behavior share the
// client by injection instead of patching a global request primitive.
//
//	client, err := apiclient.New(baseURL, store,
//		apiclient.WithInterceptors(
//			apiclient.UnauthorizedInterceptor(manager,
//				apiclient.WithWatchedBases(baseURL),
//				apiclient.WithAuthEvents(events),
//			),
//		),
//	)
//
//	var members []Member
//	err = client.DoJSON(ctx, http.MethodGet, "/members", nil, &members)
//
// # Error taxonomy
//
//   - ErrUnauthenticated: raised locally, before any network I/O, when an
//     authenticated request is attempted with no token present.
//   - ErrSessionExpired: the backend answered 401; distinguished so UI code
//     can show "please log in again" instead of a generic failure.
//   - *APIError: any other non-2xx response, carrying the status code and a
//     best-effort parsed error body. Never triggers logout.
//
// No automatic retry exists anywhere in this package; a failed authenticated
// call is never silently re-attempted.
package apiclient
