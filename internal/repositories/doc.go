// Package repositories implements SQLite persistence for server-side sessions.
//
// Key Implementations:
//   - [SessionRepository] : session rows keyed by the id carried in the signed session cookie
//
// Expired rows are treated as missing and are purged with [SessionRepository.DeleteExpired].
package repositories
