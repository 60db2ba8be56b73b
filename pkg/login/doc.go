// Package login implements credential verification and the authentication
// flows built on it.
//
// CredentialRepository stores employee credentials and the per-account
// failure counters, PasswordHasher wraps bcrypt, AttemptGovernor enforces
// the brute-force lockout, and AuthService orchestrates login, logout,
// token verification and refresh against the token service and the
// revocation registry.
package login
