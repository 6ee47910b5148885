package sigv4

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chukul/cloudtop/internal/awsregion"
	"github.com/chukul/cloudtop/internal/catalog"
	"github.com/chukul/cloudtop/internal/errs"
	"github.com/rs/zerolog"
)

// CredentialsProvider is the narrow interface the client needs from the credential
// chain; internal/awscreds.Service satisfies this via a thin adapter so this package
// never imports awscreds directly.
type CredentialsProvider interface {
	Resolve(ctx context.Context) (Credentials, error)
}

// Client is the lightweight HTTPS client with per-service protocol adapters. One
// Client is shared across all dispatch calls for a session.
type Client struct {
	httpClient *http.Client
	creds      CredentialsProvider
	region     string
	endpoint   string // endpoint_override, verbatim if set
	logger     zerolog.Logger
	rng        *rand.Rand
}

// NewClient constructs a Client bound to a region, an optional endpoint override
// (the LocalStack case), and a credentials provider.
func NewClient(logger zerolog.Logger, creds CredentialsProvider, region, endpointOverride string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		creds:      creds,
		region:     region,
		endpoint:   endpointOverride,
		logger:     logger,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRegion updates the region used for regional endpoint construction and signing.
// Used when the TUI's region hotkeys switch the active region.
func (c *Client) SetRegion(region string) {
	c.region = region
}

func (c *Client) endpointFor(svc catalog.ServiceDefinition, isGlobal bool) string {
	if c.endpoint != "" {
		return c.endpoint
	}
	if isGlobal {
		return fmt.Sprintf("https://%s.amazonaws.com", svc.EndpointPrefix)
	}
	return fmt.Sprintf("https://%s.%s.amazonaws.com", svc.EndpointPrefix, c.region)
}

// JSONRequest implements the JSON-RPC protocol: a POST with an X-Amz-Target header
// naming the operation, used by services like DynamoDB, ECS, Lambda's newer APIs,
// and Secrets Manager.
func (c *Client) JSONRequest(ctx context.Context, svc catalog.ServiceDefinition, isGlobal bool, action string, body map[string]any) (any, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request body: %w", err)
	}

	version := svc.JSONVersion
	if version == "" {
		version = "1.1"
	}
	contentType := "application/x-amz-json-" + version

	target := svc.TargetPrefix + "." + action
	headers := map[string]string{
		"content-type": contentType,
		"x-amz-target": target,
	}

	respBody, err := c.doRequest(ctx, svc, isGlobal, http.MethodPost, "/", nil, payload, headers, true)
	if err != nil {
		return nil, err
	}

	var out any
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("decoding json response: %w", err)
	}
	return out, nil
}

// QueryRequest implements the Query/form protocol with an XML response, normalized
// to JSON, used by EC2, IAM, RDS, SNS, SQS, CloudFormation, and STS. idempotent
// marks whether a bare transport error (no response at all) is safe to retry; the
// dispatch layer's list/describe calls pass true, internal/actions's mutating EC2
// calls pass false.
func (c *Client) QueryRequest(ctx context.Context, svc catalog.ServiceDefinition, isGlobal bool, action string, form url.Values, idempotent bool) (any, error) {
	if form == nil {
		form = url.Values{}
	}
	form.Set("Action", action)
	form.Set("Version", svc.APIVersion)

	payload := []byte(form.Encode())
	headers := map[string]string{
		"content-type": "application/x-www-form-urlencoded",
	}

	respBody, err := c.doRequest(ctx, svc, isGlobal, http.MethodPost, "/", nil, payload, headers, idempotent)
	if err != nil {
		return nil, err
	}

	return xmlToJSON(bytes.NewReader(respBody))
}

// RestJSONRequest implements the REST+JSON protocol, used by Lambda's classic REST
// surface and similar services.
func (c *Client) RestJSONRequest(ctx context.Context, svc catalog.ServiceDefinition, isGlobal bool, method, path string, query url.Values, body map[string]any) (any, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
	}

	headers := map[string]string{"content-type": "application/json"}

	respBody, err := c.doRequest(ctx, svc, isGlobal, method, path, query, payload, headers, true)
	if err != nil {
		return nil, err
	}
	if len(respBody) == 0 {
		return map[string]any{}, nil
	}

	var out any
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("decoding json response: %w", err)
	}
	return out, nil
}

// RestXMLRequest implements the REST+XML protocol, used by S3.
func (c *Client) RestXMLRequest(ctx context.Context, svc catalog.ServiceDefinition, isGlobal bool, method, path string, query url.Values, body []byte) (any, error) {
	headers := map[string]string{"content-type": "application/xml"}

	respBody, err := c.doRequest(ctx, svc, isGlobal, method, path, query, body, headers, true)
	if err != nil {
		return nil, err
	}
	if len(respBody) == 0 {
		return map[string]any{}, nil
	}
	return xmlToJSON(bytes.NewReader(respBody))
}

// doRequest signs and sends a request, retrying with exponential backoff on 5xx
// throttling responses (a throttling error code or status 503), and (for idempotent
// calls) on a bare transport error too,
// returning the raw response body on a 2xx status.
func (c *Client) doRequest(ctx context.Context, svc catalog.ServiceDefinition, isGlobal bool, method, path string, query url.Values, body []byte, extraHeaders map[string]string, idempotent bool) ([]byte, error) {
	signingRegion := awsregion.EffectiveRegion(c.region, isGlobal)
	base := c.endpointFor(svc, isGlobal)

	fullURL := base + path
	u, err := url.Parse(fullURL)
	if err != nil {
		return nil, fmt.Errorf("building request url: %w", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= retryMaxTries+1; attempt++ {
		creds, err := c.creds.Resolve(ctx)
		if err != nil {
			return nil, err
		}

		now := time.Now()
		headers := map[string]string{
			"host":       u.Host,
			"x-amz-date": AmzDate(now),
		}
		for k, v := range extraHeaders {
			headers[k] = v
		}
		if creds.SessionToken != "" {
			headers["x-amz-security-token"] = creds.SessionToken
		}

		sigReq := Request{Method: method, URL: u, Headers: headers, Body: body}
		auth := Sign(sigReq, creds, signingRegion, svc.SigningName, now)

		httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("building http request: %w", err)
		}
		for k, v := range headers {
			httpReq.Header.Set(k, v)
		}
		httpReq.Header.Set("Authorization", auth)

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = &errs.TransportError{Op: method, URL: u.String(), Cause: err}
			if idempotent && attempt <= retryMaxTries {
				c.logger.Debug().Int("attempt", attempt).Err(err).Msg("retrying after transport error")
				time.Sleep(backoffDelay(attempt, c.rng))
				continue
			}
			break
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = &errs.TransportError{Op: method, URL: u.String(), Cause: readErr}
			if idempotent && attempt <= retryMaxTries {
				c.logger.Debug().Int("attempt", attempt).Err(readErr).Msg("retrying after transport error")
				time.Sleep(backoffDelay(attempt, c.rng))
				continue
			}
			break
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return respBody, nil
		}

		apiErr := parseAPIError(resp.StatusCode, respBody)
		lastErr = apiErr

		if resp.StatusCode >= 500 && apiErr.IsThrottling() && attempt <= retryMaxTries {
			c.logger.Debug().Int("attempt", attempt).Str("code", apiErr.Code).Msg("retrying after throttling/5xx")
			time.Sleep(backoffDelay(attempt, c.rng))
			continue
		}

		// 4xx is never retried.
		return nil, apiErr
	}

	return nil, lastErr
}

// parseAPIError extracts the service error code/message from a non-2xx response.
// AWS JSON protocols return {"__type": "...#Code", "message": "..."}; Query/REST-XML
// protocols return an <Error><Code>/<Message> element. Both shapes are tried.
func parseAPIError(status int, body []byte) *errs.ApiError {
	var jsonErr struct {
		Type      string `json:"__type"`
		Message   string `json:"message"`
		Message2  string `json:"Message"`
		RequestID string `json:"RequestId"`
	}
	if err := json.Unmarshal(body, &jsonErr); err == nil && (jsonErr.Type != "" || jsonErr.Message != "" || jsonErr.Message2 != "") {
		code := jsonErr.Type
		if idx := strings.LastIndexByte(code, '#'); idx >= 0 {
			code = code[idx+1:]
		}
		msg := jsonErr.Message
		if msg == "" {
			msg = jsonErr.Message2
		}
		return &errs.ApiError{Code: code, Message: msg, HTTPStatus: status, RequestID: jsonErr.RequestID}
	}

	if node, err := xmlToJSON(bytes.NewReader(body)); err == nil {
		// <Error> is the document root for REST-XML (S3) but nests under <ErrorResponse>
		// or <Response><Errors> for Query services, so search the tree breadth-first.
		pending := []any{node}
		for len(pending) > 0 {
			m, ok := pending[0].(map[string]any)
			pending = pending[1:]
			if !ok {
				continue
			}
			if code, _ := m["Code"].(string); code != "" {
				msg, _ := m["Message"].(string)
				reqID, _ := m["RequestId"].(string)
				return &errs.ApiError{Code: code, Message: msg, HTTPStatus: status, RequestID: reqID}
			}
			for _, v := range m {
				pending = append(pending, v)
			}
		}
	}

	return &errs.ApiError{Code: "Unknown", Message: string(body), HTTPStatus: status}
}
