// Package registeruser implements the Register User use case.
//
// The command carries a password hash, never a password: hashing happens in the access gate
// before the command is built, so retries never re-hash.
package registeruser
