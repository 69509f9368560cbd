package signing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Presigned URL wire constants (OSS signature version 4).
const (
	Algorithm       = "OSS4-HMAC-SHA256"
	Service         = "oss"
	RequestTag      = "aliyun_v4_request"
	KeySeedPrefix   = "aliyun_v4"
	UnsignedPayload = "UNSIGNED-PAYLOAD"

	QuerySignatureVersion   = "x-oss-signature-version"
	QueryCredential         = "x-oss-credential"
	QueryDate               = "x-oss-date"
	QueryExpires            = "x-oss-expires"
	QueryAdditionalHeaders  = "x-oss-additional-headers"
	QuerySignature          = "x-oss-signature"
	QueryContentDisposition = "response-content-disposition"

	ShortDateFormat = "20060102"
	FullDateFormat  = "20060102T150405Z"
)

var errMissingPresignField = errors.New("signing: method, host, bucket and key are required")

// V4Signer produces presigned URLs with a derived-key HMAC-SHA256 chain.
// It holds only immutable credentials and is safe for concurrent use.
type V4Signer struct {
	AccessKeyID     string
	AccessKeySecret string
	Region          string
}

// PresignInput describes one request to presign. Now is the signing timestamp; it is
// converted to UTC before use.
type PresignInput struct {
	Method string
	Scheme string
	// Host is the virtual-hosted object host, "<bucket>.<endpoint>".
	Host   string
	Bucket string
	// Key is the already-normalized object key.
	Key     string
	Expires time.Duration
	Now     time.Time
	// ResponseContentDisposition, when set, overrides Content-Disposition on the response.
	ResponseContentDisposition string
}

// CredentialScope returns "YYYYMMDD/<region>/oss/aliyun_v4_request".
func (s V4Signer) CredentialScope(t time.Time) string {
	return t.UTC().Format(ShortDateFormat) + "/" + s.Region + "/" + Service + "/" + RequestTag
}

// SigningKey derives the day- and region-scoped key used to sign requests made at t.
func (s V4Signer) SigningKey(t time.Time) []byte {
	return DeriveSigningKey(KeySeedPrefix+s.AccessKeySecret, t.UTC().Format(ShortDateFormat), s.Region, Service, RequestTag)
}

// Presign returns the full presigned URL for in.
func (s V4Signer) Presign(in PresignInput) (string, error) {
	if in.Method == "" || in.Host == "" || in.Bucket == "" || in.Key == "" {
		return "", errMissingPresignField
	}
	if in.Expires < time.Second {
		return "", fmt.Errorf("signing: expiry %s is shorter than one second", in.Expires)
	}
	scheme := in.Scheme
	if scheme == "" {
		scheme = "https"
	}

	params := s.queryParams(in)
	signature := s.signature(in, params)
	params[QuerySignature] = signature

	return scheme + "://" + in.Host + "/" + PercentEncode(in.Key, false) + "?" + CanonicalQuery(params), nil
}

func (s V4Signer) queryParams(in PresignInput) map[string]string {
	now := in.Now.UTC()
	params := map[string]string{
		QuerySignatureVersion:  Algorithm,
		QueryCredential:        s.AccessKeyID + "/" + s.CredentialScope(now),
		QueryDate:              now.Format(FullDateFormat),
		QueryExpires:           strconv.FormatInt(int64(in.Expires/time.Second), 10),
		QueryAdditionalHeaders: "host",
	}
	if in.ResponseContentDisposition != "" {
		params[QueryContentDisposition] = in.ResponseContentDisposition
	}
	return params
}

func (s V4Signer) signature(in PresignInput, params map[string]string) string {
	now := in.Now.UTC()
	sts := stringToSign(now, s.CredentialScope(now), canonicalRequest(in, params))
	return HexLower(HMACSHA256(s.SigningKey(now), []byte(sts)))
}

// canonicalRequest builds METHOD, canonical path, canonical query, canonical headers,
// signed header list and the payload marker, one per line.
func canonicalRequest(in PresignInput, params map[string]string) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(in.Method))
	b.WriteByte('\n')
	b.WriteString("/" + PercentEncode(in.Bucket, false) + "/" + PercentEncode(in.Key, false))
	b.WriteByte('\n')
	b.WriteString(CanonicalQuery(params))
	b.WriteByte('\n')
	b.WriteString("host:" + strings.ToLower(in.Host) + "\n")
	b.WriteByte('\n')
	b.WriteString("host")
	b.WriteByte('\n')
	b.WriteString(UnsignedPayload)
	return b.String()
}

func stringToSign(t time.Time, scope, canonical string) string {
	return Algorithm + "\n" + t.Format(FullDateFormat) + "\n" + scope + "\n" + SHA256Hex([]byte(canonical))
}
