// Package sigv4 implements the SigV4 request signer and canonical-request
// construction from scratch, on top of crypto/sha256 and crypto/hmac, since AWS
// credentials and requests must be signed without depending on the AWS SDK's
// built-in signer.
package sigv4

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"
)

const (
	algorithm     = "AWS4-HMAC-SHA256"
	amzDateLayout = "20060102T150405Z"
	dateLayout    = "20060102"
)

// Credentials is the minimal credential shape the signer needs; awscreds.Credentials
// satisfies this shape structurally wherever it's passed in.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// Request is the subset of an HTTP request the signer needs, kept separate from
// *http.Request so canonical-request construction can be unit tested without
// standing up a real client.
type Request struct {
	Method  string
	URL     *url.URL
	Headers map[string]string // lower-cased header name -> raw value
	Body    []byte
}

var whitespaceRun = regexp.MustCompile(`[ \t]+`)

// hashHex returns the lowercase hex SHA-256 digest of data.
func hashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func hmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

// CanonicalRequest builds the canonical request string: method, URI, query,
// sorted lowercase headers, signed-header list, and hex-encoded payload hash.
func CanonicalRequest(r Request) (canonical string, signedHeaders string) {
	canonicalURI := canonicalURIPath(r.URL.EscapedPath())
	canonicalQuery := canonicalQueryString(r.URL.Query())

	names := make([]string, 0, len(r.Headers))
	for k := range r.Headers {
		names = append(names, strings.ToLower(k))
	}
	sort.Strings(names)

	var headerLines strings.Builder
	for _, name := range names {
		value := whitespaceRun.ReplaceAllString(strings.TrimSpace(r.Headers[name]), " ")
		headerLines.WriteString(name)
		headerLines.WriteByte(':')
		headerLines.WriteString(value)
		headerLines.WriteByte('\n')
	}
	signedHeaders = strings.Join(names, ";")

	payloadHash := hashHex(r.Body)

	canonical = strings.Join([]string{
		r.Method,
		canonicalURI,
		canonicalQuery,
		headerLines.String(),
		signedHeaders,
		payloadHash,
	}, "\n")

	return canonical, signedHeaders
}

func canonicalURIPath(escapedPath string) string {
	if escapedPath == "" {
		return "/"
	}
	segments := strings.Split(escapedPath, "/")
	for i, seg := range segments {
		segments[i] = uriEncode(seg, false)
	}
	return strings.Join(segments, "/")
}

func canonicalQueryString(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		vs := append([]string(nil), values[k]...)
		sort.Strings(vs)
		for _, v := range vs {
			parts = append(parts, uriEncode(k, true)+"="+uriEncode(v, true))
		}
	}
	return strings.Join(parts, "&")
}

// uriEncode percent-encodes per RFC 3986, leaving unreserved characters (and '/' when
// encoding a path segment) untouched, matching AWS's SigV4 canonicalization rules.
func uriEncode(s string, encodeSlash bool) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isUnreserved(c):
			b.WriteByte(c)
		case c == '/' && !encodeSlash:
			b.WriteByte(c)
		default:
			b.WriteString("%")
			b.WriteString(strings.ToUpper(hex.EncodeToString([]byte{c})))
		}
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') ||
		c == '-' || c == '.' || c == '_' || c == '~'
}

// StringToSign builds the string-to-sign: algorithm, timestamp, credential scope,
// and the hashed canonical request.
func StringToSign(amzDate, credentialScope, canonicalRequest string) string {
	return strings.Join([]string{
		algorithm,
		amzDate,
		credentialScope,
		hashHex([]byte(canonicalRequest)),
	}, "\n")
}

// SigningKey derives the signing key by chaining HMAC-SHA256 over the secret key,
// date, region, service name, and the literal "aws4_request".
func SigningKey(secretAccessKey, date, region, service string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secretAccessKey), []byte(date))
	kRegion := hmacSHA256(kDate, []byte(region))
	kService := hmacSHA256(kRegion, []byte(service))
	return hmacSHA256(kService, []byte("aws4_request"))
}

// CredentialScope builds "date/region/service/aws4_request".
func CredentialScope(date, region, service string) string {
	return strings.Join([]string{date, region, service, "aws4_request"}, "/")
}

// Sign computes the Authorization header value for r, given credentials, region,
// signing name (service), and the clock to use for X-Amz-Date. r.Headers must already
// contain "host" and "x-amz-date" (and "x-amz-security-token" if applicable) before
// calling Sign, since those participate in the canonical request.
func Sign(r Request, creds Credentials, region, signingName string, now time.Time) string {
	amzDate := now.UTC().Format(amzDateLayout)
	date := now.UTC().Format(dateLayout)

	canonicalRequest, signedHeaders := CanonicalRequest(r)
	scope := CredentialScope(date, region, signingName)
	sts := StringToSign(amzDate, scope, canonicalRequest)
	key := SigningKey(creds.SecretAccessKey, date, region, signingName)
	signature := hex.EncodeToString(hmacSHA256(key, []byte(sts)))

	return algorithm + " " +
		"Credential=" + creds.AccessKeyID + "/" + scope + ", " +
		"SignedHeaders=" + signedHeaders + ", " +
		"Signature=" + signature
}

// AmzDate formats the given time in the basic ISO-8601 UTC form used for the
// X-Amz-Date header (e.g. 20240115T120000Z).
func AmzDate(t time.Time) string {
	return t.UTC().Format(amzDateLayout)
}
