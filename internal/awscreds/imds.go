package awscreds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chukul/cloudtop/internal/errs"
)

const (
	imdsBaseURL  = "http://169.254.169.254"
	imdsTokenTTL = "21600"
	imdsTimeout  = 1 * time.Second // fail fast
)

// imdsClient queries the EC2 Instance Metadata Service v2: a session token via PUT,
// then the role name and its credentials via signed-with-token GETs.
type imdsClient struct {
	httpClient *http.Client
}

func newIMDSClient() *imdsClient {
	return &imdsClient{httpClient: &http.Client{Timeout: imdsTimeout}}
}

type imdsCredentialsResponse struct {
	Code            string    `json:"Code"`
	AccessKeyID     string    `json:"AccessKeyId"`
	SecretAccessKey string    `json:"SecretAccessKey"`
	Token           string    `json:"Token"`
	Expiration      time.Time `json:"Expiration"`
}

// Fetch performs the IMDSv2 token-then-role-then-credentials sequence.
func (c *imdsClient) Fetch(ctx context.Context) (Credentials, error) {
	token, err := c.fetchToken(ctx)
	if err != nil {
		return Credentials{}, &errs.CredentialError{Kind: errs.CredentialImdsUnreachable, Cause: err}
	}

	role, err := c.fetchRoleName(ctx, token)
	if err != nil {
		return Credentials{}, &errs.CredentialError{Kind: errs.CredentialImdsUnreachable, Cause: err}
	}

	creds, err := c.fetchRoleCredentials(ctx, token, role)
	if err != nil {
		return Credentials{}, &errs.CredentialError{Kind: errs.CredentialImdsUnreachable, Cause: err}
	}

	return creds, nil
}

func (c *imdsClient) fetchToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, imdsBaseURL+"/latest/api/token", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-aws-ec2-metadata-token-ttl-seconds", imdsTokenTTL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("imds token request returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

func (c *imdsClient) get(ctx context.Context, path, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imdsBaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-aws-ec2-metadata-token", token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("imds request to %s returned %d", path, resp.StatusCode)
	}
	return body, nil
}

func (c *imdsClient) fetchRoleName(ctx context.Context, token string) (string, error) {
	body, err := c.get(ctx, "/latest/meta-data/iam/security-credentials/", token)
	if err != nil {
		return "", err
	}
	roles := strings.Fields(string(body))
	if len(roles) == 0 {
		return "", fmt.Errorf("no IAM role attached to instance profile")
	}
	return roles[0], nil
}

func (c *imdsClient) fetchRoleCredentials(ctx context.Context, token, role string) (Credentials, error) {
	body, err := c.get(ctx, "/latest/meta-data/iam/security-credentials/"+role, token)
	if err != nil {
		return Credentials{}, err
	}

	var resp imdsCredentialsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Credentials{}, fmt.Errorf("parsing imds credentials: %w", err)
	}
	if resp.Code != "Success" {
		return Credentials{}, fmt.Errorf("imds returned code %q", resp.Code)
	}

	exp := resp.Expiration
	return Credentials{
		AccessKeyID:     resp.AccessKeyID,
		SecretAccessKey: resp.SecretAccessKey,
		SessionToken:    resp.Token,
		ExpiresAt:       &exp,
	}, nil
}
