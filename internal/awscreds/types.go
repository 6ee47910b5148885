// Package awscreds implements the credential resolution chain: environment, SSO,
// credentials-file static, config-file static, and IMDSv2, plus the profile loader
// and the SSO device-authorization token broker.
package awscreds

import "time"

// Credentials is an immutable, time-bounded AWS credential set.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	ExpiresAt       *time.Time // nil means non-expiring (static long-lived credentials)
}

// expirySkew is how far ahead of ExpiresAt credentials are treated as unusable.
const expirySkew = 60 * time.Second

// NearExpiry reports whether these credentials should be re-resolved now.
func (c Credentials) NearExpiry(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Add(-expirySkew))
}

// SourceKind enumerates how a profile obtains its credentials.
type SourceKind int

const (
	SourceStatic SourceKind = iota
	SourceSSOModern
	SourceSSOLegacy
	SourceProcess
	SourceAssumeRole
)

// Profile is a resolved `[profile X]` entry, unioned with any `[sso-session Y]` it
// references.
type Profile struct {
	Name   string
	Region string
	Source SourceKind

	// Static credentials (SourceStatic).
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	// SSO (SourceSSOModern unions in the referenced sso-session; SourceSSOLegacy
	// carries its own inline fields).
	SSOSessionName string
	SSOStartURL    string
	SSORegion      string
	SSOAccountID   string
	SSORoleName    string

	// Process credential provider (SourceProcess).
	CredentialProcess string

	// Role assumption (SourceAssumeRole).
	RoleARN       string
	SourceProfile string
	ExternalID    string
}
