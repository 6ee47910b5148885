package awscreds

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chukul/cloudtop/internal/errs"
	"gopkg.in/ini.v1"
)

// CredentialsFilePath returns ~/.aws/credentials, honoring AWS_SHARED_CREDENTIALS_FILE.
func CredentialsFilePath() string {
	if p := os.Getenv("AWS_SHARED_CREDENTIALS_FILE"); p != "" {
		return p
	}
	return filepath.Join(homeDir(), ".aws", "credentials")
}

// ConfigFilePath returns ~/.aws/config, honoring AWS_CONFIG_FILE.
func ConfigFilePath() string {
	if p := os.Getenv("AWS_CONFIG_FILE"); p != "" {
		return p
	}
	return filepath.Join(homeDir(), ".aws", "config")
}

func homeDir() string {
	if h, err := os.UserHomeDir(); err == nil && h != "" {
		return h
	}
	return os.Getenv("HOME")
}

// ProfileStore loads and resolves named profiles from the credentials and config
// files, unioning `[profile X]` with any referenced `[sso-session Y]` block.
type ProfileStore struct {
	credsFile *ini.File // may be nil if the file does not exist
	cfgFile   *ini.File // may be nil if the file does not exist
}

// LoadProfileStore reads both well-known files. Missing files are not an error: a
// user relying purely on environment or IMDS credentials need not have either.
func LoadProfileStore() (*ProfileStore, error) {
	store := &ProfileStore{}

	if b, err := os.ReadFile(CredentialsFilePath()); err == nil {
		f, err := ini.Load(b)
		if err != nil {
			return nil, fmt.Errorf("parsing credentials file: %w", err)
		}
		store.credsFile = f
	}

	if b, err := os.ReadFile(ConfigFilePath()); err == nil {
		f, err := ini.Load(b)
		if err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		store.cfgFile = f
	}

	return store, nil
}

// Resolve looks up a named profile, unioning its `[profile X]` config section (or
// `[X]` in the credentials file) with any `[sso-session Y]` it references. Circular
// source_profile chains are rejected invariant.
func (s *ProfileStore) Resolve(name string) (*Profile, error) {
	return s.resolve(name, map[string]bool{})
}

func (s *ProfileStore) resolve(name string, visited map[string]bool) (*Profile, error) {
	if visited[name] {
		return nil, &errs.CredentialError{Kind: errs.CredentialProfileCycle, Profile: name,
			Cause: fmt.Errorf("source_profile cycle detected at %q", name)}
	}
	visited[name] = true

	p := &Profile{Name: name}

	// Static credentials live in ~/.aws/credentials under the bare profile name, or
	// inline in the profile's ~/.aws/config section when the credentials file has none
	// ([default] for "default", [profile X] otherwise). role/sso fields live in
	// ~/.aws/config under [profile X] (except the default profile, which is [default]
	// in both files).
	if s.credsFile != nil {
		if sec, err := s.credsFile.GetSection(name); err == nil {
			p.AccessKeyID = sec.Key("aws_access_key_id").String()
			p.SecretAccessKey = sec.Key("aws_secret_access_key").String()
			p.SessionToken = sec.Key("aws_session_token").String()
		}
	}

	cfgSectionName := "profile " + name
	if name == "default" {
		cfgSectionName = "default"
	}

	if s.cfgFile != nil {
		if sec, err := s.cfgFile.GetSection(cfgSectionName); err == nil {
			applyConfigSection(p, sec)

			if p.AccessKeyID == "" {
				p.AccessKeyID = sec.Key("aws_access_key_id").String()
				p.SecretAccessKey = sec.Key("aws_secret_access_key").String()
				p.SessionToken = sec.Key("aws_session_token").String()
			}

			if ssoSession := sec.Key("sso_session").String(); ssoSession != "" {
				if ssoSec, err := s.cfgFile.GetSection("sso-session " + ssoSession); err == nil {
					p.Source = SourceSSOModern
					p.SSOSessionName = ssoSession
					p.SSOStartURL = ssoSec.Key("sso_start_url").String()
					p.SSORegion = ssoSec.Key("sso_region").String()
					p.SSOAccountID = sec.Key("sso_account_id").String()
					p.SSORoleName = sec.Key("sso_role_name").String()
				}
			} else if sec.Key("sso_start_url").String() != "" {
				p.Source = SourceSSOLegacy
				p.SSOStartURL = sec.Key("sso_start_url").String()
				p.SSORegion = sec.Key("sso_region").String()
				p.SSOAccountID = sec.Key("sso_account_id").String()
				p.SSORoleName = sec.Key("sso_role_name").String()
			}

			if rp := sec.Key("source_profile").String(); rp != "" && sec.Key("role_arn").String() != "" {
				p.Source = SourceAssumeRole
				p.RoleARN = sec.Key("role_arn").String()
				p.SourceProfile = rp
				p.ExternalID = sec.Key("external_id").String()
				// Validate the chain resolves without a cycle; callers that need the
				// resolved source credentials call Resolve(p.SourceProfile) themselves.
				if _, err := s.resolve(rp, visited); err != nil {
					return nil, err
				}
			}

			if cp := sec.Key("credential_process").String(); cp != "" {
				p.Source = SourceProcess
				p.CredentialProcess = cp
			}
		}
	}

	if p.AccessKeyID != "" && p.Source == SourceStatic {
		// already defaulted to SourceStatic
	}

	return p, nil
}

func applyConfigSection(p *Profile, sec *ini.Section) {
	if r := sec.Key("region").String(); r != "" {
		p.Region = r
	}
}

// ExistsCredentialsFile reports whether ~/.aws/credentials is present.
func (s *ProfileStore) ExistsCredentialsFile() bool { return s.credsFile != nil }

// ExistsConfigFile reports whether ~/.aws/config is present.
func (s *ProfileStore) ExistsConfigFile() bool { return s.cfgFile != nil }
