// Package client contains the sync transport used by the anymind client.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) with the
//     operations the reconciler needs: Push, Pull, CreateSpace and Ping.
//  2. A JSON-over-HTTP implementation (see HTTPClient) that maps domain
//     values to the protocol documents and back. Timestamps that fail to
//     decode fall back to the Unix epoch.
//
// # Error Handling
//
// Every failed exchange matches common.ErrTransport with errors.Is. A non-2xx
// status is reported as *HTTPError; a 401 additionally matches
// common.ErrUnauthorized.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations honor context
// cancellation; each request is also bounded by the client timeout.
package client
