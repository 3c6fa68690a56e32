package repositories

import "database/sql"

// TokenKey is the fixed key the session token is persisted under.
const TokenKey = "token"

// TokenRepository persists the single session token.
type TokenRepository struct {
	kv *KVRepository
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{kv: NewKVRepository(db)}
}

// Get returns the stored token, if any.
func (r *TokenRepository) Get() (string, bool, error) {
	token, ok, err := r.kv.Get(TokenKey)
	if err != nil || token == "" {
		return "", false, err
	}
	return token, ok, nil
}

// Set replaces the stored token.
func (r *TokenRepository) Set(token string) error {
	return r.kv.Put(TokenKey, token)
}

// Delete removes the stored token.
func (r *TokenRepository) Delete() error {
	return r.kv.Delete(TokenKey)
}
