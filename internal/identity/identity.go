// Package identity implements the credential layer for Beams.
//
// It provides:
//   - TokenIssuer: issues and verifies HS256 Beams tokens for end users
//   - SessionVerifier: verifies the customer's own session JWTs
//   - RequireSession: Gin middleware enforcing a Bearer session token
package identity
