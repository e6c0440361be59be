// Package api provides typed wrappers over the backend's REST surface.
// Each service is a thin layer on core/apiclient: it names endpoints and
// shapes payloads, while credential attachment, status handling, and
// authorization-failure interception stay in the client.
package api
