// Package testkit assembles an in-process mock host for the ledger module:
// a memory store, a static reserve oracle, and a posting-grant signer over a
// freshly generated key pair. The module's flow tests use it, and hosts can
// use it to exercise integrations without a ledger runtime.
package testkit

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/louisbranch/waymark"
	"github.com/louisbranch/waymark/domain"
	"github.com/louisbranch/waymark/grant"
	"github.com/louisbranch/waymark/internal/platform/id"
	"github.com/louisbranch/waymark/oracle"
	"github.com/louisbranch/waymark/storage/memory"
)

const (
	defaultIssuer   = "waymark-testkit"
	defaultAudience = "waymark"
	defaultTTL      = 5 * time.Minute
)

// Signer mints posting grants accepted by the paired module configuration.
type Signer struct {
	Issuer   string
	Audience string
	TTL      time.Duration
	Key      ed25519.PrivateKey
	Now      func() time.Time
}

// Grant signs a posting grant resolving to account.
func (s *Signer) Grant(account domain.AccountID) (string, error) {
	if s == nil || len(s.Key) != ed25519.PrivateKeySize {
		return "", errors.New("posting grant signer is not configured")
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	issued := now().UTC()
	return encodeGrant(s.Key, map[string]any{
		"iss":        s.Issuer,
		"aud":        s.Audience,
		"iat":        issued.Unix(),
		"exp":        issued.Add(ttl).Unix(),
		"jti":        uuid.NewString(),
		"account_id": string(account),
	})
}

func encodeGrant(key ed25519.PrivateKey, payload map[string]any) (string, error) {
	headerJSON, err := json.Marshal(map[string]string{
		"alg": "EdDSA",
		"typ": "JWT",
	})
	if err != nil {
		return "", fmt.Errorf("encode grant header: %w", err)
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode grant payload: %w", err)
	}

	encodedHeader := base64.RawURLEncoding.EncodeToString(headerJSON)
	encodedPayload := base64.RawURLEncoding.EncodeToString(payloadJSON)
	signingInput := encodedHeader + "." + encodedPayload
	signature := ed25519.Sign(key, []byte(signingInput))
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(signature), nil
}

// Host bundles a module with its in-memory collaborators.
type Host struct {
	Module *waymark.Module
	Store  *memory.Store
	Oracle *oracle.Static
	Signer *Signer
}

// NewHost assembles a module over a memory store, a static oracle, and a
// freshly generated grant key pair.
func NewHost(opts ...waymark.Option) (*Host, error) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate grant key: %w", err)
	}

	store := memory.NewStore()
	reserves := oracle.NewStatic()
	signer := &Signer{
		Issuer:   defaultIssuer,
		Audience: defaultAudience,
		TTL:      defaultTTL,
		Key:      private,
	}

	module, err := waymark.New(store, reserves, grant.Config{
		Issuer:   defaultIssuer,
		Audience: defaultAudience,
		Key:      public,
	}, opts...)
	if err != nil {
		return nil, err
	}

	return &Host{
		Module: module,
		Store:  store,
		Oracle: reserves,
		Signer: signer,
	}, nil
}

// NewAccountID returns a random canonical account identity for fixtures.
func NewAccountID() (domain.AccountID, error) {
	raw, err := id.NewID()
	if err != nil {
		return "", fmt.Errorf("generate account id: %w", err)
	}
	return domain.ParseAccountID(raw)
}
