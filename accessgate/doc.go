// Package accessgate authenticates callers of the loan engine.
//
// It hashes passwords with bcrypt, issues signed bearer tokens on login, and turns a
// presented token back into a core.Caller. Every authorization re-loads the user from the
// record store, so deactivating a user revokes their tokens immediately.
//
// Tokens are not JWTs. A token is the base64url encoded JSON payload {sub, role, exp},
// a dot, and the base64url encoded HMAC-SHA256 of the encoded payload.
package accessgate
