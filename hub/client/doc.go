// Package client implements the asynchronous hub client. Each operation
// issues one HTTP request and immediately returns a *Reply, an async.OpFuture
// carrying the correlation Context of the call. Completions are additionally
// dispatched, one at a time, to an optional handler registered at client
// construction: the handler observes replies single-threaded, never
// concurrently with itself.
package client
