// Package librarystore defines the domain model of the library backend:
// books with stock counters, registered users, active loans, and the
// sentinel error taxonomy shared by the storage engine and its callers.
package librarystore
