package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"shareapi/internal/signing"
)

// STS session bounds; requested durations are clamped into them.
const (
	MinSTSDuration = 900 * time.Second
	MaxSTSDuration = 3600 * time.Second

	stsTimestampFormat = "2006-01-02T15:04:05Z"
	stsSessionPrefix   = "shareapi-"
)

type policyDocument struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

type policyStatement struct {
	Effect   string   `json:"Effect"`
	Action   []string `json:"Action"`
	Resource []string `json:"Resource"`
}

type assumeRoleResponse struct {
	RequestID   string `json:"RequestId"`
	Credentials struct {
		AccessKeyID     string `json:"AccessKeyId"`
		AccessKeySecret string `json:"AccessKeySecret"`
		SecurityToken   string `json:"SecurityToken"`
		Expiration      string `json:"Expiration"`
	} `json:"Credentials"`
}

type stsErrorResponse struct {
	RequestID string `json:"RequestId"`
	Code      string `json:"Code"`
	Message   string `json:"Message"`
}

// ClampSTSDuration bounds d to [MinSTSDuration, MaxSTSDuration] in whole seconds.
func ClampSTSDuration(d time.Duration) int64 {
	secs := int64(d / time.Second)
	lo, hi := int64(MinSTSDuration/time.Second), int64(MaxSTSDuration/time.Second)
	switch {
	case secs < lo:
		return lo
	case secs > hi:
		return hi
	}
	return secs
}

// policyWildcards are the characters RAM policy resources treat as patterns.
const policyWildcards = "*?$"

// uploadPolicy grants PutObject on exactly one object.
func uploadPolicy(bucket, key string) (string, error) {
	doc := policyDocument{
		Version: "1",
		Statement: []policyStatement{{
			Effect:   "Allow",
			Action:   []string{"oss:PutObject"},
			Resource: []string{"acs:oss:*:*:" + bucket + "/" + key},
		}},
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// STSToken issues temporary credentials that may only upload key. It needs a
// configured role ARN; without one it fails with ErrUnsupported.
func (s *RemoteStorage) STSToken(ctx context.Context, key string, duration time.Duration) (*TemporaryCredentials, error) {
	ctx, span := s.start(ctx, "sts", key)
	creds, err := s.assumeRole(ctx, key, duration)
	return creds, s.finish(span, "sts", err)
}

func (s *RemoteStorage) assumeRole(ctx context.Context, key string, duration time.Duration) (*TemporaryCredentials, error) {
	if s.roleARN == "" {
		return nil, unsupported("sts", key)
	}
	k, err := s.NormalizeKey(key)
	if err != nil {
		return nil, err
	}
	if strings.ContainsAny(k, policyWildcards) {
		return nil, validationError("sts", key, "key must not contain policy wildcards")
	}
	if duration <= 0 {
		duration = s.stsDuration
	}
	expiresIn := ClampSTSDuration(duration)

	policy, err := uploadPolicy(s.bucket, k)
	if err != nil {
		return nil, newError(KindBackend, "sts", k, fmt.Errorf("encode policy: %w", err))
	}

	params := map[string]string{
		"Action":           "AssumeRole",
		"Format":           "JSON",
		"Version":          "2015-04-01",
		"AccessKeyId":      s.signer.AccessKeyID,
		"SignatureMethod":  "HMAC-SHA1",
		"SignatureVersion": "1.0",
		"SignatureNonce":   uuid.NewString(),
		"Timestamp":        s.now().UTC().Format(stsTimestampFormat),
		"RoleArn":          s.roleARN,
		"RoleSessionName":  stsSessionPrefix + strings.ReplaceAll(uuid.NewString(), "-", ""),
		"DurationSeconds":  strconv.FormatInt(expiresIn, 10),
		"Policy":           policy,
	}
	params["Signature"] = signing.SignRPC(http.MethodGet, params, s.signer.AccessKeySecret)
	rawURL := s.stsEndpoint + "?" + signing.CanonicalQuery(params)

	var out assumeRoleResponse
	err = s.send(ctx, "sts", k, http.MethodGet, rawURL, nil, nil, func(resp *http.Response) error {
		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return newError(KindBackend, "sts", k, fmt.Errorf("read body: %w", err))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return stsFailure(k, resp.StatusCode, body)
		}
		if err := json.Unmarshal(body, &out); err != nil {
			return newError(KindBackend, "sts", k, fmt.Errorf("decode response: %w", err))
		}
		if out.Credentials.AccessKeyID == "" || out.Credentials.SecurityToken == "" {
			return newError(KindBackend, "sts", k, errors.New("response carries no credentials"))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug().Str("key", k).Str("request_id", out.RequestID).Int64("expires_in", expiresIn).Msg("issued upload credentials")
	return &TemporaryCredentials{
		AccessKeyID:     out.Credentials.AccessKeyID,
		AccessKeySecret: out.Credentials.AccessKeySecret,
		SecurityToken:   out.Credentials.SecurityToken,
		Expiration:      out.Credentials.Expiration,
		Bucket:          s.bucket,
		Region:          s.signer.Region,
		Endpoint:        s.endpointHost,
		UploadKey:       k,
		ExpiresIn:       expiresIn,
	}, nil
}

func stsFailure(key string, status int, body []byte) *Error {
	e := &Error{Kind: KindBackend, Op: "sts", Key: key, StatusCode: status}
	var resp stsErrorResponse
	if err := json.Unmarshal(body, &resp); err == nil && resp.Code != "" {
		e.Err = fmt.Errorf("assume role [%s]: %s", resp.Code, resp.Message)
		return e
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	e.Body = strings.TrimSpace(string(body))
	return e
}
