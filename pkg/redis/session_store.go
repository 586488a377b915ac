package redis

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	jose "github.com/go-jose/go-jose/v3"
)

const (
	sessionPrefix = "session:"
	revokedPrefix = "revoked:"
)

// SessionData is what an opaque session id resolves to.
type SessionData struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// SessionStore keeps JWE-encrypted session payloads in Redis and tracks
// revoked token ids.
type SessionStore struct {
	encryptionKey []byte
}

var (
	setSessionValue    = Set
	getSessionValue    = Get
	delSessionValue    = Del
	existsSessionValue = Exists
	marshalSessionJSON = json.Marshal
)

// NewSessionStore creates a new session store from a 32 byte hex key.
func NewSessionStore(encryptionKeyHex string) (*SessionStore, error) {
	key, err := hex.DecodeString(encryptionKeyHex)
	if err != nil {
		return nil, errors.New("invalid encryption key hex")
	}
	if len(key) != 32 {
		return nil, errors.New("encryption key must be 32 bytes (64 hex chars)")
	}
	return &SessionStore{encryptionKey: key}, nil
}

// CreateSession stores encrypted session data in Redis
func (s *SessionStore) CreateSession(ctx context.Context, sessionID string, data *SessionData, expiration time.Duration) error {
	payload, err := marshalSessionJSON(data)
	if err != nil {
		return err
	}

	sealed, err := s.encrypt(payload)
	if err != nil {
		return err
	}

	return setSessionValue(ctx, sessionPrefix+sessionID, sealed, expiration)
}

// GetSession retrieves and decrypts session data from Redis
func (s *SessionStore) GetSession(ctx context.Context, sessionID string) (*SessionData, error) {
	sealed, err := getSessionValue(ctx, sessionPrefix+sessionID)
	if err != nil {
		return nil, err
	}

	payload, err := s.decrypt(sealed)
	if err != nil {
		return nil, err
	}

	var data SessionData
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, err
	}

	return &data, nil
}

// DeleteSession removes a session from Redis
func (s *SessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	return delSessionValue(ctx, sessionPrefix+sessionID)
}

// RevokeToken denylists a token id until its natural expiry.
func (s *SessionStore) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	return setSessionValue(ctx, revokedPrefix+tokenID, "1", ttl)
}

// IsRevoked reports whether the token id was revoked.
func (s *SessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	return existsSessionValue(ctx, revokedPrefix+tokenID)
}

func (s *SessionStore) encrypt(plaintext []byte) (string, error) {
	enc, err := jose.NewEncrypter(
		jose.A256GCM,
		jose.Recipient{Algorithm: jose.DIRECT, Key: s.encryptionKey},
		nil,
	)
	if err != nil {
		return "", err
	}

	obj, err := enc.Encrypt(plaintext)
	if err != nil {
		return "", err
	}
	return obj.CompactSerialize()
}

func (s *SessionStore) decrypt(compact string) ([]byte, error) {
	obj, err := jose.ParseEncrypted(compact)
	if err != nil {
		return nil, err
	}
	return obj.Decrypt(s.encryptionKey)
}
