// Package httpapi exposes the library backend as a REST API on Echo.
//
// Status mapping: 200 for successful reads and mutations, 201 for creation,
// 400 for bad credentials, validation failures and domain-expected conflicts
// (already borrowed, out of stock, nothing to return), 401 for
// unauthenticated requests, 404 for entity lookup misses, 500 for storage
// and unexpected failures without internal detail.
package httpapi
