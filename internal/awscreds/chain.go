package awscreds

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/chukul/cloudtop/internal/errs"
	"github.com/rs/zerolog"
)

// Service resolves and caches credentials for a single profile at a time. It is the
// one mutator of the in-memory credential cache; callers on the UI thread own the
// instance.
type Service struct {
	logger zerolog.Logger
	store  *ProfileStore
	sso    *SSOBroker
	imds   *imdsClient

	mu         sync.Mutex
	cachedFor  string
	cached     Credentials
	cachedFrom string // chain step that produced cached; "env" credentials carry no expiry, so they are re-read only on a profile change or InvalidateCache
}

// NewService constructs a credential Service backed by the standard AWS config/
// credentials files.
func NewService(logger zerolog.Logger) (*Service, error) {
	store, err := LoadProfileStore()
	if err != nil {
		return nil, err
	}
	return &Service{
		logger: logger,
		store:  store,
		sso:    NewSSOBroker(logger),
		imds:   newIMDSClient(),
	}, nil
}

// Resolve returns usable credentials for profileName, trying the chain in the fixed
// order and short-circuiting on first success. Results are
// cached in memory until 60s before expiry.
func (s *Service) Resolve(ctx context.Context, profileName string) (Credentials, error) {
	s.mu.Lock()
	if s.cachedFor == profileName && !s.cached.NearExpiry(time.Now()) {
		creds := s.cached
		s.mu.Unlock()
		return creds, nil
	}
	s.mu.Unlock()

	creds, source, err := s.resolveUncached(ctx, profileName)
	if err != nil {
		return Credentials{}, err
	}

	s.mu.Lock()
	s.cachedFor = profileName
	s.cached = creds
	s.cachedFrom = source
	s.mu.Unlock()

	s.logger.Debug().Str("profile", profileName).Str("source", source).Msg("credentials resolved")
	return creds, nil
}

// InvalidateCache forces the next Resolve call to re-run the chain, used when the
// user explicitly switches profile or region.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cachedFor = ""
	s.cached = Credentials{}
	s.cachedFrom = ""
}

func (s *Service) resolveUncached(ctx context.Context, profileName string) (Credentials, string, error) {
	// 1. Environment.
	if creds, ok := envCredentials(); ok {
		return creds, "env", nil
	}

	profile, err := s.store.Resolve(profileName)
	if err != nil {
		return Credentials{}, "", err
	}

	// 2. Profile with SSO.
	if profile.Source == SourceSSOModern || profile.Source == SourceSSOLegacy {
		accountID, roleName := profile.SSOAccountID, profile.SSORoleName
		ssoRegion := profile.SSORegion
		creds, err := s.sso.GetRoleCredentials(profile.SSOStartURL, ssoRegion, accountID, roleName)
		if err != nil {
			return Credentials{}, "", err
		}
		return creds, "sso", nil
	}

	// Role assumption: resolve the source profile's credentials first, then assume.
	if profile.Source == SourceAssumeRole {
		sourceCreds, _, err := s.resolveUncached(ctx, profile.SourceProfile)
		if err != nil {
			return Credentials{}, "", err
		}
		region := profile.Region
		if region == "" {
			region = "us-east-1"
		}
		creds, err := AssumeRole(ctx, sourceCreds, profile.RoleARN, profile.ExternalID, "cloudtop", region)
		if err != nil {
			return Credentials{}, "", err
		}
		return creds, "assume-role", nil
	}

	// 3. Credentials file static / 4. Config file static (profile.AccessKeyID is
	// populated from either file by ProfileStore.Resolve, credentials file taking
	// precedence there).
	if profile.AccessKeyID != "" && profile.SecretAccessKey != "" {
		return Credentials{
			AccessKeyID:     profile.AccessKeyID,
			SecretAccessKey: profile.SecretAccessKey,
			SessionToken:    profile.SessionToken,
		}, "static-file", nil
	}

	// 5. IMDSv2.
	imdsCtx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()
	creds, err := s.imds.Fetch(imdsCtx)
	if err != nil {
		return Credentials{}, "", &errs.CredentialError{Kind: errs.CredentialMissing, Profile: profileName, Cause: err}
	}
	return creds, "imds", nil
}

func envCredentials() (Credentials, bool) {
	ak := os.Getenv("AWS_ACCESS_KEY_ID")
	sk := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if ak == "" || sk == "" {
		return Credentials{}, false
	}
	return Credentials{
		AccessKeyID:     ak,
		SecretAccessKey: sk,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
	}, true
}
