// Package auth provides password hashing and stateless bearer token
// handling for the library backend.
package auth
