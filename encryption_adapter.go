package shopstate

import (
	"github.com/CreativeUnicorns/shopstate/encryption"
)

// EncryptionAdapter exposes an encryption.Manager as an Encryptor.
type EncryptionAdapter struct {
	manager *encryption.Manager
}

// NewEncryptionAdapter reads the key from SHOPSTATE_ENCRYPTION_KEY and fails
// fast when it is missing or too short.
func NewEncryptionAdapter() (*EncryptionAdapter, error) {
	manager, err := encryption.NewManager()
	if err != nil {
		return nil, err
	}
	return &EncryptionAdapter{manager: manager}, nil
}

// NewEncryptionAdapterWithKey builds an adapter from explicit key material.
func NewEncryptionAdapterWithKey(key []byte) (*EncryptionAdapter, error) {
	manager, err := encryption.NewManagerWithKey(key)
	if err != nil {
		return nil, err
	}
	return &EncryptionAdapter{manager: manager}, nil
}

// Encrypt implements Encryptor.
func (e *EncryptionAdapter) Encrypt(plaintext string) (string, error) {
	return e.manager.Encrypt(plaintext)
}

// Decrypt implements Encryptor.
func (e *EncryptionAdapter) Decrypt(ciphertext string) (string, error) {
	return e.manager.Decrypt(ciphertext)
}
