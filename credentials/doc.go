// Package credentials implements the cryptographic primitives behind
// account passwords: salted PBKDF2 hashing and verification, password
// policy and strength evaluation, secure random token and password
// generation, and constant-time comparison.
package credentials
