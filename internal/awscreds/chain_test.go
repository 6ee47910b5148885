package awscreds

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

// TestChainEnvWinsOverFile asserts the order-stability invariant :
// env-present always wins over file-present.
func TestChainEnvWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	writeCredsFile(t, dir, "[work]\naws_access_key_id = FILEKEY\naws_secret_access_key = filesecret\n")

	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_ACCESS_KEY_ID", "ENVKEY")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "envsecret")
	t.Setenv("AWS_SESSION_TOKEN", "")

	svc, err := NewService(zerolog.Nop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	creds, err := svc.Resolve(context.Background(), "work")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if creds.AccessKeyID != "ENVKEY" {
		t.Fatalf("expected env credentials to win, got %q", creds.AccessKeyID)
	}
}

// TestChainFileWinsWhenNoEnv asserts file-present wins when env is absent.
func TestChainFileWinsWhenNoEnv(t *testing.T) {
	dir := t.TempDir()
	writeCredsFile(t, dir, "[work]\naws_access_key_id = FILEKEY\naws_secret_access_key = filesecret\n")

	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	t.Setenv("AWS_SESSION_TOKEN", "")

	svc, err := NewService(zerolog.Nop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	creds, err := svc.Resolve(context.Background(), "work")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if creds.AccessKeyID != "FILEKEY" {
		t.Fatalf("expected file credentials, got %q", creds.AccessKeyID)
	}
}

func writeCredsFile(t *testing.T, dir, contents string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "credentials"), []byte(contents), 0o600); err != nil {
		t.Fatalf("writing credentials file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config"), []byte(""), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
}
