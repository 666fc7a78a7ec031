// Package repositories implements SQLite persistence for the client's local state.
//
// The only persisted state is the session token:
//   - [CredentialRepository] : single-row credential store satisfying the session token store contract
//
// The schema lives in the embedded migrations of the shared package; [Open] applies them before handing out a repository.
package repositories
