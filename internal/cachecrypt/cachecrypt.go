// Package cachecrypt encrypts the on-disk cache document with a key
// derived from machine identity. The blob layout is fixed:
//
//	base64( iv[12] ‖ tag[16] ‖ ciphertext )
//
// so a cache written by any implementation of this format decrypts
// here and vice versa. The package is deliberately ignorant of where
// the identity string comes from.
package cachecrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// derivationSalt is fixed so the key is deterministic per machine.
	derivationSalt = "dynamic-alias-cache-encryption-v1"

	derivationIterations = 100000
	keyLen               = 32 // AES-256

	nonceLen = 12
	tagLen   = 16
)

// DeriveKey turns a machine-identity string into a 256-bit AES key
// using PBKDF2-HMAC-SHA256.
func DeriveKey(machineID string) []byte {
	return pbkdf2.Key([]byte(machineID), []byte(derivationSalt), derivationIterations, keyLen, sha256.New)
}

// Encrypt serializes doc to JSON and seals it with AES-256-GCM under
// key, returning the base64 blob stored under the cache's "_crypt" key.
func Encrypt(key []byte, doc map[string]any) (string, error) {
	plaintext, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal cache document: %w", err)
	}

	aead, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	// Go's GCM appends the tag after the ciphertext; the wire format
	// wants iv, tag, ciphertext.
	sealed := aead.Seal(nil, nonce, plaintext, nil)
	ct, tag := sealed[:len(sealed)-tagLen], sealed[len(sealed)-tagLen:]

	blob := make([]byte, 0, nonceLen+tagLen+len(ct))
	blob = append(blob, nonce...)
	blob = append(blob, tag...)
	blob = append(blob, ct...)
	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt reverses Encrypt. It fails if the blob is malformed, was
// encrypted under a different key (another machine), or was tampered
// with; the caller degrades to an empty cache in all of those cases.
func Decrypt(key []byte, encoded string) (map[string]any, error) {
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode cache blob: %w", err)
	}
	if len(blob) < nonceLen+tagLen {
		return nil, fmt.Errorf("cache blob truncated: %d bytes", len(blob))
	}

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := blob[:nonceLen]
	tag := blob[nonceLen : nonceLen+tagLen]
	ct := blob[nonceLen+tagLen:]

	sealed := make([]byte, 0, len(ct)+tagLen)
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt cache: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(plaintext, &doc); err != nil {
		return nil, fmt.Errorf("parse decrypted cache: %w", err)
	}
	return doc, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return aead, nil
}
