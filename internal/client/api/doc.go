// Package api is the REST transport of the family organizer client.
//
// A single Client is shared by the whole process. It injects the current
// bearer token (from a TokenSource, or pinned per call with WithToken) into
// every request except login and register, tags each request with an
// X-Request-ID, and turns every failure into an *Error that says whether a
// response was received at all (KindNetwork) or which status came back
// (KindHTTP), together with the server's error body when it sent one.
//
// Callers match failures with errors.Is against ErrUnavailable,
// ErrUnauthorized, ErrForbidden, ErrNotFound, ErrServer and friends.
package api
