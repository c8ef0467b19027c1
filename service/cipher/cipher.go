// Package cipher implements the data encryption format shared with the
// wallet host: a fixed magic prefix, a 24 byte nonce and a secretbox
// ciphertext keyed by a Curve25519 shared secret of two ed25519 identities.
package cipher

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"filippo.io/edwards25519"
	lru "github.com/hashicorp/golang-lru"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/secretbox"
)

// Magic prefixes every encrypted artifact.
const Magic = "qortalEncryptedData"

const (
	nonceSize        = 24
	keySize          = 32
	defaultCacheSize = 256
)

var (
	// ErrInvalidKey is returned when a key is missing or not a valid point.
	ErrInvalidKey = errors.New("invalid key")
	// ErrMalformed is returned for artifacts without the magic prefix or nonce.
	ErrMalformed = errors.New("malformed encrypted data")
	// ErrOpen is returned when the ciphertext does not authenticate.
	ErrOpen = errors.New("unable to open encrypted data")
)

// Service seals and opens artifacts. Shared secrets are a pure function of
// the key pair and are cached.
type Service struct {
	cache *lru.ARCCache
	rand  io.Reader
}

// New creates a cipher service with an ARC cache of size shared secrets.
func New(size int) (*Service, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.NewARC(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create secret cache: %w", err)
	}
	return &Service{cache: cache, rand: rand.Reader}, nil
}

// SharedSecret returns sha256(X25519(curve(privateKey), curve(publicKey))).
// privateKey is a 32 byte ed25519 seed (a 64 byte expanded key is accepted
// too), publicKey a 32 byte ed25519 public key.
func (s *Service) SharedSecret(privateKey, publicKey []byte) ([]byte, error) {
	if len(privateKey) != keySize && len(privateKey) != 2*keySize {
		return nil, ErrInvalidKey
	}
	if len(publicKey) != keySize {
		return nil, ErrInvalidKey
	}
	privateKey = privateKey[:keySize]
	cacheKey := sha256.Sum256(append(append([]byte{}, privateKey...), publicKey...))
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.([]byte), nil
	}

	point, err := new(edwards25519.Point).SetBytes(publicKey)
	if err != nil {
		return nil, ErrInvalidKey
	}
	scalar := curveScalar(privateKey)
	shared, err := curve25519.X25519(scalar, point.BytesMontgomery())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	secret := sha256.Sum256(shared)
	s.cache.Add(cacheKey, secret[:])
	return secret[:], nil
}

// curveScalar converts an ed25519 seed into its clamped X25519 scalar.
func curveScalar(seed []byte) []byte {
	digest := sha512.Sum512(seed)
	scalar := digest[:keySize]
	scalar[0] &= 248
	scalar[31] &= 127
	scalar[31] |= 64
	return scalar
}

// Seal encrypts plaintext for publicKey and returns magic||nonce||box.
func (s *Service) Seal(plaintext, privateKey, publicKey []byte) ([]byte, error) {
	secret, err := s.SharedSecret(privateKey, publicKey)
	if err != nil {
		return nil, err
	}
	var nonce [nonceSize]byte
	if _, err = io.ReadFull(s.rand, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	var key [keySize]byte
	copy(key[:], secret)
	out := make([]byte, 0, len(Magic)+nonceSize+len(plaintext)+secretbox.Overhead)
	out = append(out, Magic...)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, plaintext, &nonce, &key), nil
}

// Box encrypts plaintext for publicKey with a caller supplied nonce and
// returns the bare secretbox, as embedded in direct chat messages.
func (s *Service) Box(plaintext, privateKey, publicKey, nonce []byte) ([]byte, error) {
	if len(nonce) < nonceSize {
		return nil, ErrMalformed
	}
	secret, err := s.SharedSecret(privateKey, publicKey)
	if err != nil {
		return nil, err
	}
	var key [keySize]byte
	copy(key[:], secret)
	var n [nonceSize]byte
	copy(n[:], nonce)
	return secretbox.Seal(nil, plaintext, &n, &key), nil
}

// Open reverses Seal.
func (s *Service) Open(artifact, privateKey, publicKey []byte) ([]byte, error) {
	if len(artifact) < len(Magic)+nonceSize || string(artifact[:len(Magic)]) != Magic {
		return nil, ErrMalformed
	}
	secret, err := s.SharedSecret(privateKey, publicKey)
	if err != nil {
		return nil, err
	}
	var nonce [nonceSize]byte
	copy(nonce[:], artifact[len(Magic):len(Magic)+nonceSize])
	var key [keySize]byte
	copy(key[:], secret)
	plaintext, ok := secretbox.Open(nil, artifact[len(Magic)+nonceSize:], &nonce, &key)
	if !ok {
		return nil, ErrOpen
	}
	return plaintext, nil
}

// Encrypt seals base64 data64 for a base58 public key, returning base64.
func (s *Service) Encrypt(data64 string, privateKey []byte, publicKey58 string) (string, error) {
	plaintext, err := base64.StdEncoding.DecodeString(data64)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	publicKey, err := DecodeKey(publicKey58)
	if err != nil {
		return "", err
	}
	artifact, err := s.Seal(plaintext, privateKey, publicKey)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(artifact), nil
}

// Decrypt opens a base64 artifact from a base58 public key, returning the
// plaintext as base64.
func (s *Service) Decrypt(encrypted64 string, privateKey []byte, publicKey58 string) (string, error) {
	artifact, err := base64.StdEncoding.DecodeString(encrypted64)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	publicKey, err := DecodeKey(publicKey58)
	if err != nil {
		return "", err
	}
	plaintext, err := s.Open(artifact, privateKey, publicKey)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(plaintext), nil
}

// DecodeKey decodes a base58 32 byte key.
func DecodeKey(key58 string) ([]byte, error) {
	if key58 == "" {
		return nil, ErrInvalidKey
	}
	key, err := base58.Decode(key58)
	if err != nil || len(key) != keySize {
		return nil, ErrInvalidKey
	}
	return key, nil
}
