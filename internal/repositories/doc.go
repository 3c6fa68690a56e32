// Package repositories implements SQLite persistence for the client's local state.
//
// The client owns very little persistent data; everything else lives on the media API.
//
// Key Implementations:
//   - [KVRepository] : generic key-value rows in the kv_store table
//   - [TokenRepository] : the session token stored under a fixed key; satisfies session.Store
//   - [PreferenceRepository] : last used genre filter and sort order per entity kind
//
// Rows are upserted; deleting a missing key is not an error.
package repositories
