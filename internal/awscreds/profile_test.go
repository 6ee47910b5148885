package awscreds

import (
	"os"
	"path/filepath"
	"testing"
)

// TestProfileCycleDetected asserts a circular source_profile chain is rejected
// rather than looping forever.
func TestProfileCycleDetected(t *testing.T) {
	dir := t.TempDir()
	cfg := `
[profile a]
role_arn = arn:aws:iam::111111111111:role/A
source_profile = b

[profile b]
role_arn = arn:aws:iam::111111111111:role/B
source_profile = a
`
	if err := os.WriteFile(filepath.Join(dir, "config"), []byte(cfg), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "credentials"), []byte(""), 0o600); err != nil {
		t.Fatalf("writing credentials: %v", err)
	}

	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))

	store, err := LoadProfileStore()
	if err != nil {
		t.Fatalf("LoadProfileStore: %v", err)
	}

	if _, err := store.Resolve("a"); err == nil {
		t.Fatal("expected cycle detection error, got nil")
	}
}

// TestProfileSSOModernUnion asserts [profile X] with sso_session unions in the
// referenced [sso-session Y] block.
func TestProfileSSOModernUnion(t *testing.T) {
	dir := t.TempDir()
	cfg := `
[profile work]
sso_session = mysso
sso_account_id = 123456789012
sso_role_name = Admin

[sso-session mysso]
sso_start_url = https://example.awsapps.com/start
sso_region = us-east-1
`
	if err := os.WriteFile(filepath.Join(dir, "config"), []byte(cfg), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "credentials"), []byte(""), 0o600); err != nil {
		t.Fatalf("writing credentials: %v", err)
	}

	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))

	store, err := LoadProfileStore()
	if err != nil {
		t.Fatalf("LoadProfileStore: %v", err)
	}

	p, err := store.Resolve("work")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Source != SourceSSOModern {
		t.Fatalf("expected SourceSSOModern, got %v", p.Source)
	}
	if p.SSOStartURL != "https://example.awsapps.com/start" {
		t.Fatalf("expected unioned sso_start_url, got %q", p.SSOStartURL)
	}
	if p.SSORegion != "us-east-1" {
		t.Fatalf("expected unioned sso_region, got %q", p.SSORegion)
	}
}
