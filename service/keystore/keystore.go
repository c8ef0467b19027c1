// Package keystore holds the signing identity and foreign wallet material of
// the host account. Secrets are loaded through scy so they can stay
// encrypted at rest.
package keystore

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mr-tron/base58"
	"github.com/viant/scy"
	_ "github.com/viant/scy/kms/blowfish"
)

// ErrNoAccount is returned when no key material is loaded.
var ErrNoAccount = errors.New("no account loaded")

// Account is the public identity of the host account.
type Account struct {
	Address   string `json:"address"`
	PublicKey string `json:"publicKey"`
}

// Wallet holds the key material of one foreign coin wallet.
type Wallet struct {
	MasterPrivateKey string `json:"derivedMasterPrivateKey,omitempty" yaml:"derivedMasterPrivateKey,omitempty"`
	MasterPublicKey  string `json:"derivedMasterPublicKey,omitempty" yaml:"derivedMasterPublicKey,omitempty"`
	Seed58           string `json:"seed58,omitempty" yaml:"seed58,omitempty"`
}

// Material is the secret document: a base58 ed25519 seed and per-coin wallets.
type Material struct {
	Seed    string             `json:"seed" yaml:"seed"`
	Wallets map[string]*Wallet `json:"wallets,omitempty" yaml:"wallets,omitempty"`
}

// Store gives pipelines access to the account without exposing where the
// keys live.
type Store interface {
	Account(ctx context.Context) (*Account, error)
	PrivateKey(ctx context.Context) ([]byte, error)
	Sign(ctx context.Context, message []byte) ([]byte, error)
	Wallet(ctx context.Context, coin string) (*Wallet, error)
}

// Service is a Store backed by in-memory material, optionally loaded from a
// scy resource.
type Service struct {
	mu       sync.RWMutex
	key      ed25519.PrivateKey
	account  *Account
	wallets  map[string]*Wallet
	scy      *scy.Service
	resource *scy.Resource
}

// New creates a key store bound to a scy resource (URL plus encryption key,
// for example blowfish://default). Load must be called before use.
func New(URL, key string) *Service {
	return &Service{scy: scy.New(), resource: scy.NewResource(nil, URL, key)}
}

// NewStatic creates a key store from in-memory material.
func NewStatic(material *Material) (*Service, error) {
	ret := &Service{}
	if err := ret.apply(material); err != nil {
		return nil, err
	}
	return ret, nil
}

// Load reads and decrypts the material document.
func (s *Service) Load(ctx context.Context) error {
	if s.scy == nil || s.resource == nil {
		return nil
	}
	secret, err := s.scy.Load(ctx, s.resource)
	if err != nil {
		return fmt.Errorf("failed to load key material from %s: %w", s.resource.URL, err)
	}
	material := &Material{}
	if err = json.Unmarshal([]byte(secret.String()), material); err != nil {
		return fmt.Errorf("invalid key material %s: %w", s.resource.URL, err)
	}
	return s.apply(material)
}

// Secure encrypts material and stores it at URL.
func Secure(ctx context.Context, material *Material, URL, key string) error {
	data, err := json.Marshal(material)
	if err != nil {
		return err
	}
	resource := scy.NewResource(nil, URL, key)
	if err = scy.New().Store(ctx, scy.NewSecret(string(data), resource)); err != nil {
		return fmt.Errorf("failed to store key material at %s: %w", URL, err)
	}
	return nil
}

func (s *Service) apply(material *Material) error {
	if material == nil || material.Seed == "" {
		return ErrNoAccount
	}
	seed, err := base58.Decode(material.Seed)
	if err != nil || len(seed) != ed25519.SeedSize {
		return fmt.Errorf("invalid seed: expected %d bytes", ed25519.SeedSize)
	}
	key := ed25519.NewKeyFromSeed(seed)
	publicKey := key.Public().(ed25519.PublicKey)
	wallets := map[string]*Wallet{}
	for coin, wallet := range material.Wallets {
		wallets[strings.ToUpper(coin)] = wallet
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = key
	s.wallets = wallets
	s.account = &Account{Address: Address(publicKey), PublicKey: base58.Encode(publicKey)}
	return nil
}

// Account returns the loaded identity.
func (s *Service) Account(ctx context.Context) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.account == nil {
		return nil, ErrNoAccount
	}
	ret := *s.account
	return &ret, nil
}

// PrivateKey returns the 32 byte seed.
func (s *Service) PrivateKey(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.key == nil {
		return nil, ErrNoAccount
	}
	return s.key.Seed(), nil
}

// Sign signs message with the account key.
func (s *Service) Sign(ctx context.Context, message []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.key == nil {
		return nil, ErrNoAccount
	}
	return ed25519.Sign(s.key, message), nil
}

// Wallet returns the foreign wallet for coin.
func (s *Service) Wallet(ctx context.Context, coin string) (*Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wallet, ok := s.wallets[strings.ToUpper(coin)]
	if !ok || wallet == nil {
		return nil, fmt.Errorf("no %s wallet configured", strings.ToUpper(coin))
	}
	return wallet, nil
}

var _ Store = (*Service)(nil)
