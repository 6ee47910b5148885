package awscreds

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/chukul/cloudtop/internal/errs"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ssoCacheEntry is the on-disk cache schema at ~/.aws/sso/cache/<sha1(start_url)>.json,
// matching the reference CLI's format so cloudtop and the reference CLI can share a
// cache directory.
type ssoCacheEntry struct {
	StartURL              string    `json:"startUrl"`
	Region                string    `json:"region"`
	AccessToken           string    `json:"accessToken"`
	ExpiresAt             time.Time `json:"expiresAt"`
	ClientID              string    `json:"clientId,omitempty"`
	ClientSecret          string    `json:"clientSecret,omitempty"`
	RegistrationExpiresAt time.Time `json:"registrationExpiresAt,omitempty"`
}

// SSOCacheDir returns ~/.aws/sso/cache.
func SSOCacheDir() string {
	return filepath.Join(homeDir(), ".aws", "sso", "cache")
}

func ssoCacheFilePath(startURL string) string {
	sum := sha1.Sum([]byte(startURL))
	name := strings.ToUpper(hex.EncodeToString(sum[:]))
	return filepath.Join(SSOCacheDir(), fmt.Sprintf("%s.json", name))
}

// SSOBroker performs the OIDC device-authorization flow, caches/reuses access
// tokens, and exchanges them for role credentials via the SSO portal API. A single
// broker instance should be shared across a process so its login lock serializes
// concurrent device-flow prompts.
type SSOBroker struct {
	logger     zerolog.Logger
	httpClient *http.Client
	loginMu    sync.Mutex
}

// NewSSOBroker constructs a broker with a conservative HTTP timeout; SSO endpoints
// are small JSON APIs, not bulk data transfers.
func NewSSOBroker(logger zerolog.Logger) *SSOBroker {
	return &SSOBroker{
		logger:     logger,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// GetRoleCredentials returns temporary role credentials for the given SSO session,
// using a cached access token if still valid, else running the device-authorization
// flow. Concurrent callers serialize on loginMu so only one device-flow prompt is
// shown at a time.
func (b *SSOBroker) GetRoleCredentials(startURL, ssoRegion, accountID, roleName string) (Credentials, error) {
	b.loginMu.Lock()
	defer b.loginMu.Unlock()

	token, err := b.accessToken(startURL, ssoRegion)
	if err != nil {
		return Credentials{}, err
	}

	return b.exchangeRoleCredentials(ssoRegion, accountID, roleName, token)
}

// accessToken returns a valid SSO access token, from the cache hit path or by
// running the full device-authorization flow.
func (b *SSOBroker) accessToken(startURL, ssoRegion string) (string, error) {
	if entry, ok := b.cacheLookup(startURL); ok {
		b.logger.Debug().Str("start_url", startURL).Msg("sso cache hit")
		return entry.AccessToken, nil
	}
	return b.deviceFlow(startURL, ssoRegion)
}

func (b *SSOBroker) cacheLookup(startURL string) (*ssoCacheEntry, bool) {
	data, err := os.ReadFile(ssoCacheFilePath(startURL))
	if err != nil {
		return nil, false
	}
	var entry ssoCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		return nil, false
	}
	return &entry, true
}

func (b *SSOBroker) writeCache(entry ssoCacheEntry) error {
	if err := os.MkdirAll(SSOCacheDir(), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(ssoCacheFilePath(entry.StartURL), data, 0o600)
}

type registerClientResponse struct {
	ClientID              string `json:"clientId"`
	ClientSecret          string `json:"clientSecret"`
	ClientSecretExpiresAt int64  `json:"clientSecretExpiresAt"`
}

type startDeviceAuthResponse struct {
	DeviceCode              string `json:"deviceCode"`
	UserCode                string `json:"userCode"`
	VerificationURI         string `json:"verificationUri"`
	VerificationURIComplete string `json:"verificationUriComplete"`
	ExpiresIn               int    `json:"expiresIn"`
	Interval                int    `json:"interval"`
}

type createTokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
	Error       string `json:"error"`
}

// deviceFlow registers an ephemeral OIDC client, starts device authorization, opens
// the browser to the verification URL (best-effort), and polls for the token.
func (b *SSOBroker) deviceFlow(startURL, ssoRegion string) (string, error) {
	oidcBase := fmt.Sprintf("https://oidc.%s.amazonaws.com", ssoRegion)

	clientName := "cloudtop-" + uuid.NewString()
	var reg registerClientResponse
	if err := b.postJSON(oidcBase+"/client/register", map[string]any{
		"clientName": clientName,
		"clientType": "public",
	}, &reg); err != nil {
		return "", &errs.CredentialError{Kind: errs.CredentialSsoTimeout, Cause: fmt.Errorf("register client: %w", err)}
	}

	var auth startDeviceAuthResponse
	if err := b.postJSON(oidcBase+"/device_authorization", map[string]any{
		"clientId":     reg.ClientID,
		"clientSecret": reg.ClientSecret,
		"startUrl":     startURL,
	}, &auth); err != nil {
		return "", &errs.CredentialError{Kind: errs.CredentialSsoTimeout, Cause: fmt.Errorf("start device authorization: %w", err)}
	}

	fmt.Fprintf(os.Stderr, "\nTo authorize cloudtop, visit:\n  %s\n", auth.VerificationURIComplete)
	fmt.Fprintf(os.Stderr, "and confirm the code: %s\n\n", auth.UserCode)
	_ = openBrowser(auth.VerificationURIComplete) // best-effort

	interval := time.Duration(auth.Interval) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	deadline := time.Now().Add(time.Duration(auth.ExpiresIn) * time.Second)

	for {
		if time.Now().After(deadline) {
			return "", &errs.CredentialError{Kind: errs.CredentialSsoTimeout, Cause: fmt.Errorf("device authorization expired")}
		}

		var tok createTokenResponse
		err := b.postJSON(oidcBase+"/token", map[string]any{
			"clientId":     reg.ClientID,
			"clientSecret": reg.ClientSecret,
			"grantType":    "urn:ietf:params:oauth:grant-type:device_code",
			"deviceCode":   auth.DeviceCode,
		}, &tok)

		switch {
		case err == nil && tok.AccessToken != "":
			expiresAt := time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
			_ = b.writeCache(ssoCacheEntry{
				StartURL:              startURL,
				Region:                ssoRegion,
				AccessToken:           tok.AccessToken,
				ExpiresAt:             expiresAt,
				ClientID:              reg.ClientID,
				ClientSecret:          reg.ClientSecret,
				RegistrationExpiresAt: time.Unix(reg.ClientSecretExpiresAt, 0),
			})
			return tok.AccessToken, nil
		case tok.Error == "authorization_pending" || tok.Error == "slow_down":
			time.Sleep(interval)
			continue
		case tok.Error == "access_denied":
			return "", &errs.CredentialError{Kind: errs.CredentialSsoDenied, Cause: fmt.Errorf("sso login denied by user")}
		default:
			time.Sleep(interval)
		}
	}
}

func (b *SSOBroker) exchangeRoleCredentials(ssoRegion, accountID, roleName, accessToken string) (Credentials, error) {
	portalBase := fmt.Sprintf("https://portal.sso.%s.amazonaws.com", ssoRegion)
	req, err := http.NewRequest(http.MethodGet, portalBase+"/federation/credentials", nil)
	if err != nil {
		return Credentials{}, err
	}
	q := req.URL.Query()
	q.Set("account_id", accountID)
	q.Set("role_name", roleName)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("x-amz-sso_bearer_token", accessToken)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return Credentials{}, &errs.TransportError{Op: "GET", URL: req.URL.String(), Cause: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return Credentials{}, &errs.ApiError{Code: "SsoRoleCredentialsFailure", Message: string(body), HTTPStatus: resp.StatusCode}
	}

	var out struct {
		RoleCredentials struct {
			AccessKeyID     string `json:"accessKeyId"`
			SecretAccessKey string `json:"secretAccessKey"`
			SessionToken    string `json:"sessionToken"`
			Expiration      int64  `json:"expiration"` // epoch millis
		} `json:"roleCredentials"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return Credentials{}, fmt.Errorf("parsing role credentials response: %w", err)
	}

	expiry := time.UnixMilli(out.RoleCredentials.Expiration)
	return Credentials{
		AccessKeyID:     out.RoleCredentials.AccessKeyID,
		SecretAccessKey: out.RoleCredentials.SecretAccessKey,
		SessionToken:    out.RoleCredentials.SessionToken,
		ExpiresAt:       &expiry,
	}, nil
}

func (b *SSOBroker) postJSON(url string, body map[string]any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return &errs.TransportError{Op: "POST", URL: url, Cause: err}
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	// The token-poll endpoint answers authorization_pending/slow_down with a 400 and
	// an {"error": "..."} body that deviceFlow needs to unmarshal, not treat as fatal.
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusBadRequest {
		return &errs.ApiError{Code: "SsoRequestFailure", Message: string(data), HTTPStatus: resp.StatusCode}
	}
	return json.Unmarshal(data, out)
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform")
	}
	return cmd.Start()
}
