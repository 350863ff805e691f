// Package crypto encrypts values at rest with AES-GCM. The key is a
// hex-encoded 32-byte string; ciphertexts are hex-encoded.
package crypto

import (
	"encoding/hex"
	"fmt"

	"github.com/gtank/cryptopasta"
)

type Cipher string

func (c Cipher) secureKey() (*[32]byte, error) {
	key, err := hex.DecodeString(string(c))
	if err != nil {
		return nil, fmt.Errorf("error decoding cipher key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("cipher key must be 32 bytes, got %d", len(key))
	}

	return (*[32]byte)(key), nil
}

func (c Cipher) Encrypt(value string) (string, error) {
	key, err := c.secureKey()
	if err != nil {
		return "", err
	}

	encrypted, err := cryptopasta.Encrypt([]byte(value), key)
	if err != nil {
		return "", fmt.Errorf("error encrypting value: %w", err)
	}

	return hex.EncodeToString(encrypted), nil
}

func (c Cipher) Decrypt(value string) (string, error) {
	key, err := c.secureKey()
	if err != nil {
		return "", err
	}

	decoded, err := hex.DecodeString(value)
	if err != nil {
		return "", fmt.Errorf("error decoding value: %w", err)
	}

	decrypted, err := cryptopasta.Decrypt(decoded, key)
	if err != nil {
		return "", fmt.Errorf("error decrypting value: %w", err)
	}

	return string(decrypted), nil
}
