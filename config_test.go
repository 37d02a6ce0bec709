package waymark

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/waymark/grant"
	"github.com/louisbranch/waymark/oracle"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv(EnvStorePath, "")
	t.Setenv(grant.EnvGrantIssuer, "issuer")
	t.Setenv(grant.EnvGrantAudience, "waymark")

	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	t.Setenv(grant.EnvGrantPublicKey, base64.RawStdEncoding.EncodeToString(pub))

	if _, err := LoadConfigFromEnv(nil); err == nil {
		t.Fatal("expected error when store path is missing")
	}

	t.Setenv(EnvStorePath, "/tmp/waymark.sqlite")
	cfg, err := LoadConfigFromEnv(nil)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StorePath != "/tmp/waymark.sqlite" {
		t.Fatalf("expected store path to be loaded, got %q", cfg.StorePath)
	}
	if cfg.Grants.Issuer != "issuer" || cfg.Grants.Audience != "waymark" {
		t.Fatal("expected grant config to be loaded")
	}
}

func TestOpenSubmitRoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	now := time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)
	cfg := Config{
		StorePath: filepath.Join(t.TempDir(), "waymark.sqlite"),
		Grants: grant.Config{
			Issuer:   "issuer",
			Audience: "waymark",
			Key:      pub,
			Now:      func() time.Time { return now },
		},
	}

	reserves := oracle.NewStatic()
	account := testAccount("a")
	reserves.Set(account, 100)

	module, err := Open(cfg, reserves, WithNow(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("open module: %v", err)
	}

	proof := signSubmitProof(t, priv, map[string]any{
		"iss":        "issuer",
		"aud":        "waymark",
		"exp":        now.Add(time.Hour).Unix(),
		"jti":        "jti-1",
		"account_id": string(account),
	})
	if err := module.Submit(context.Background(), proof, 42); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := module.Close(); err != nil {
		t.Fatalf("close module: %v", err)
	}

	reopened, err := Open(cfg, reserves)
	if err != nil {
		t.Fatalf("reopen module: %v", err)
	}
	t.Cleanup(func() {
		if err := reopened.Close(); err != nil {
			t.Fatalf("close reopened module: %v", err)
		}
	})

	value, err := reopened.Value(context.Background())
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if value != 42 {
		t.Fatalf("expected value 42 after reopen, got %d", value)
	}

	balance, err := reopened.Snapshot(context.Background(), account)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if balance != 100 {
		t.Fatalf("expected snapshot 100 after reopen, got %d", balance)
	}
}

func TestOpenRejectsMissingStorePath(t *testing.T) {
	if _, err := Open(Config{}, oracle.NewStatic()); err == nil {
		t.Fatal("expected error for missing store path")
	}
}

func TestOpenClosesStoreWhenAssemblyFails(t *testing.T) {
	cfg := Config{StorePath: filepath.Join(t.TempDir(), "waymark.sqlite")}
	if _, err := Open(cfg, nil); err == nil {
		t.Fatal("expected error for missing oracle")
	}
}
