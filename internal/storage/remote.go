package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/minio/minio-go/v7/pkg/s3utils"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"shareapi/internal/config"
	"shareapi/internal/signing"
)

const (
	// headCheckExpiry signs metadata and existence checks, which are used immediately.
	headCheckExpiry       = 60 * time.Second
	defaultRequestTimeout = 30 * time.Second
	defaultSTSEndpoint    = "https://sts.aliyuncs.com/"
	tracerName            = "shareapi/internal/storage"
)

// RemoteStorage talks to the object store through presigned HTTP requests and
// issues temporary credentials through the STS AssumeRole API.
type RemoteStorage struct {
	signer        signing.V4Signer
	client        *http.Client
	scheme        string
	endpointHost  string
	bucket        string
	keyPrefix     string
	roleARN       string
	stsEndpoint   string
	stsDuration   time.Duration
	defaultExpiry time.Duration
	timeout       time.Duration
	now           func() time.Time
	log           zerolog.Logger
	metrics       *Metrics
	tracer        trace.Tracer
}

// NewRemoteStorage validates cfg and resolves the signing region. Every missing
// setting is reported in one Config error.
func NewRemoteStorage(cfg config.RemoteStorageConfig, opts ...Option) (*RemoteStorage, error) {
	o := buildOptions(opts)

	var missing []error
	required := func(v, name string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			missing = append(missing, fmt.Errorf("%s is required", name))
		}
		return v
	}
	accessKeyID := required(cfg.AccessKeyID, "OSS_ACCESS_KEY_ID")
	accessKeySecret := required(cfg.AccessKeySecret, "OSS_ACCESS_KEY_SECRET")
	endpoint := required(cfg.Endpoint, "OSS_ENDPOINT")
	bucket := required(cfg.Bucket, "OSS_BUCKET")
	if len(missing) > 0 {
		return nil, newError(KindConfig, "new", "", errors.Join(missing...))
	}

	scheme, host := splitEndpoint(endpoint)
	region, err := resolveRegion(cfg.Region, host)
	if err != nil {
		return nil, newError(KindConfig, "new", "", err)
	}

	s := &RemoteStorage{
		signer: signing.V4Signer{
			AccessKeyID:     accessKeyID,
			AccessKeySecret: accessKeySecret,
			Region:          region,
		},
		client:        o.client,
		scheme:        scheme,
		endpointHost:  host,
		bucket:        bucket,
		keyPrefix:     strings.Trim(strings.TrimSpace(cfg.KeyPrefix), "/"),
		roleARN:       strings.TrimSpace(cfg.STSRoleARN),
		stsEndpoint:   strings.TrimSpace(cfg.STSEndpoint),
		stsDuration:   time.Duration(cfg.STSSessionDurationSec) * time.Second,
		defaultExpiry: time.Duration(cfg.SignedURLExpirySec) * time.Second,
		timeout:       time.Duration(cfg.RequestTimeoutSec) * time.Second,
		now:           o.now,
		log:           o.log.With().Str("component", "storage").Str("backend", string(BackendRemote)).Logger(),
		metrics:       o.metrics,
		tracer:        otel.Tracer(tracerName),
	}
	if s.stsEndpoint == "" {
		s.stsEndpoint = defaultSTSEndpoint
	}
	switch {
	case s.defaultExpiry < time.Second:
		s.defaultExpiry = DefaultSignedURLExpiry
	case s.defaultExpiry > MaxSignedURLExpiry:
		s.defaultExpiry = MaxSignedURLExpiry
	}
	if s.timeout <= 0 {
		s.timeout = defaultRequestTimeout
	}
	return s, nil
}

func splitEndpoint(endpoint string) (scheme, host string) {
	scheme = "https"
	if strings.HasPrefix(endpoint, "http://") {
		scheme = "http"
	}
	host = strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
	return scheme, strings.TrimRight(host, "/")
}

// resolveRegion prefers the configured region and otherwise reads it from an
// "oss-<region>." endpoint.
func resolveRegion(region, host string) (string, error) {
	if r := strings.TrimSpace(region); r != "" {
		return strings.TrimPrefix(r, "oss-"), nil
	}
	if rest, ok := strings.CutPrefix(host, "oss-"); ok {
		if r, _, _ := strings.Cut(rest, "."); r != "" {
			return r, nil
		}
	}
	return "", errors.New("OSS_REGION is not set and cannot be inferred from OSS_ENDPOINT")
}

// NormalizeKey trims key, strips leading slashes and applies the key prefix
// unless the key already carries it. Applying it twice gives the same key.
func (s *RemoteStorage) NormalizeKey(key string) (string, error) {
	k := strings.TrimLeft(strings.TrimSpace(key), "/")
	if k == "" {
		return "", validationError("normalize", key, "key is empty")
	}
	if s.keyPrefix != "" && k != s.keyPrefix && !strings.HasPrefix(k, s.keyPrefix+"/") {
		k = s.keyPrefix + "/" + k
	}
	if err := s3utils.CheckValidObjectName(k); err != nil {
		return "", newError(KindValidation, "normalize", key, err)
	}
	return k, nil
}

// Bucket returns the configured bucket name.
func (s *RemoteStorage) Bucket() string { return s.bucket }

// ObjectHost returns the virtual-hosted host objects are addressed on.
func (s *RemoteStorage) ObjectHost() string { return s.bucket + "." + s.endpointHost }

func (s *RemoteStorage) presign(method, key string, expires time.Duration, disposition string) (string, error) {
	switch {
	case expires < time.Second:
		expires = s.defaultExpiry
	case expires > MaxSignedURLExpiry:
		expires = MaxSignedURLExpiry
	}
	u, err := s.signer.Presign(signing.PresignInput{
		Method:                     method,
		Scheme:                     s.scheme,
		Host:                       s.ObjectHost(),
		Bucket:                     s.bucket,
		Key:                        key,
		Expires:                    expires,
		Now:                        s.now(),
		ResponseContentDisposition: disposition,
	})
	if err != nil {
		return "", newError(KindConfig, "presign", key, err)
	}
	return u, nil
}

func (s *RemoteStorage) start(ctx context.Context, op, key string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "storage."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("storage.backend", string(BackendRemote)),
			attribute.String("storage.bucket", s.bucket),
			attribute.String("storage.key", key),
		),
	)
}

func (s *RemoteStorage) finish(span trace.Span, op string, err error) error {
	defer span.End()
	s.metrics.observe(BackendRemote, op, err)
	if err == nil || IsNotFound(err) {
		return err
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, op+" failed")
	if KindOf(err) != KindValidation {
		s.log.Warn().Err(err).Str("op", op).Msg("storage operation failed")
	}
	return err
}

// send runs one request under the per-call timeout and passes the response to
// handle. Transport failures become Backend errors.
func (s *RemoteStorage) send(ctx context.Context, op, key, method, rawURL string, body []byte, header http.Header, handle func(*http.Response) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, r)
	if err != nil {
		return newError(KindBackend, op, key, err)
	}
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return newError(KindBackend, op, key, err)
	}
	defer resp.Body.Close()
	return handle(resp)
}

func (s *RemoteStorage) SaveFile(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	ctx, span := s.start(ctx, "save", key)
	k, err := s.put(ctx, "save", key, data, contentType)
	return k, s.finish(span, "save", err)
}

func (s *RemoteStorage) WriteFile(ctx context.Context, key string, data []byte, contentType string) error {
	ctx, span := s.start(ctx, "write", key)
	_, err := s.put(ctx, "write", key, data, contentType)
	return s.finish(span, "write", err)
}

func (s *RemoteStorage) put(ctx context.Context, op, key string, data []byte, contentType string) (string, error) {
	k, err := s.NormalizeKey(key)
	if err != nil {
		return "", err
	}
	u, err := s.presign(http.MethodPut, k, 0, "")
	if err != nil {
		return "", err
	}
	header := http.Header{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	if data == nil {
		data = []byte{}
	}
	err = s.send(ctx, op, k, http.MethodPut, u, data, header, func(resp *http.Response) error {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		return statusError(op, k, resp)
	})
	if err != nil {
		return "", err
	}
	return k, nil
}

func (s *RemoteStorage) ReadFile(ctx context.Context, key string) ([]byte, error) {
	ctx, span := s.start(ctx, "read", key)
	data, err := s.read(ctx, key)
	return data, s.finish(span, "read", err)
}

func (s *RemoteStorage) read(ctx context.Context, key string) ([]byte, error) {
	k, err := s.NormalizeKey(key)
	if err != nil {
		return nil, err
	}
	u, err := s.presign(http.MethodGet, k, 0, "")
	if err != nil {
		return nil, err
	}
	var data []byte
	err = s.send(ctx, "read", k, http.MethodGet, u, nil, nil, func(resp *http.Response) error {
		switch resp.StatusCode {
		case http.StatusOK, http.StatusPartialContent:
			b, err := io.ReadAll(resp.Body)
			if err != nil {
				return newError(KindBackend, "read", k, fmt.Errorf("read body: %w", err))
			}
			data = b
			return nil
		case http.StatusNotFound:
			return newError(KindNotFound, "read", k, nil)
		default:
			return statusError("read", k, resp)
		}
	})
	return data, err
}

func (s *RemoteStorage) DeleteFile(ctx context.Context, key string) error {
	ctx, span := s.start(ctx, "delete", key)
	return s.finish(span, "delete", s.delete(ctx, key))
}

func (s *RemoteStorage) delete(ctx context.Context, key string) error {
	k, err := s.NormalizeKey(key)
	if err != nil {
		return err
	}
	u, err := s.presign(http.MethodDelete, k, 0, "")
	if err != nil {
		return err
	}
	return s.send(ctx, "delete", k, http.MethodDelete, u, nil, nil, func(resp *http.Response) error {
		if resp.StatusCode == http.StatusNotFound || (resp.StatusCode >= 200 && resp.StatusCode < 300) {
			return nil
		}
		return statusError("delete", k, resp)
	})
}

func (s *RemoteStorage) FileURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	return s.signedURL(ctx, "url", http.MethodGet, key, expires, "")
}

func (s *RemoteStorage) DownloadURL(ctx context.Context, key, filename string, expires time.Duration) (string, error) {
	disposition := `attachment; filename="` + SanitizeFilename(filename) + `"`
	return s.signedURL(ctx, "download_url", http.MethodGet, key, expires, disposition)
}

// UploadURL presigns a PUT. The content type is not part of the signature, so
// the client may send any Content-Type header.
func (s *RemoteStorage) UploadURL(ctx context.Context, key string, expires time.Duration, contentType string) (string, error) {
	return s.signedURL(ctx, "upload_url", http.MethodPut, key, expires, "")
}

func (s *RemoteStorage) signedURL(ctx context.Context, op, method, key string, expires time.Duration, disposition string) (string, error) {
	_, span := s.start(ctx, op, key)
	k, err := s.NormalizeKey(key)
	if err != nil {
		return "", s.finish(span, op, err)
	}
	u, err := s.presign(method, k, expires, disposition)
	return u, s.finish(span, op, err)
}

// HeadFile reads object metadata with HEAD. Stores that reject HEAD with 403 or
// 405 under their bucket policy are asked again with a one-byte ranged GET.
func (s *RemoteStorage) HeadFile(ctx context.Context, key string) (ObjectMetadata, error) {
	ctx, span := s.start(ctx, "head", key)
	meta, err := s.head(ctx, key)
	return meta, s.finish(span, "head", err)
}

func (s *RemoteStorage) head(ctx context.Context, key string) (ObjectMetadata, error) {
	k, err := s.NormalizeKey(key)
	if err != nil {
		return ObjectMetadata{}, err
	}
	u, err := s.presign(http.MethodHead, k, headCheckExpiry, "")
	if err != nil {
		return ObjectMetadata{}, err
	}

	var (
		meta     ObjectMetadata
		rejected int
	)
	err = s.send(ctx, "head", k, http.MethodHead, u, nil, nil, func(resp *http.Response) error {
		switch resp.StatusCode {
		case http.StatusOK:
			meta = metadataFromResponse(resp)
			return nil
		case http.StatusNotFound:
			return newError(KindNotFound, "head", k, nil)
		case http.StatusForbidden, http.StatusMethodNotAllowed:
			rejected = resp.StatusCode
			return nil
		default:
			return statusError("head", k, resp)
		}
	})
	if err != nil || rejected == 0 {
		return meta, err
	}

	s.metrics.headFallback()
	s.log.Warn().Str("key", k).Int("status", rejected).Msg("HEAD rejected, falling back to ranged GET")
	return s.rangedHead(ctx, k)
}

func (s *RemoteStorage) rangedHead(ctx context.Context, k string) (ObjectMetadata, error) {
	u, err := s.presign(http.MethodGet, k, headCheckExpiry, "")
	if err != nil {
		return ObjectMetadata{}, err
	}
	var meta ObjectMetadata
	err = s.send(ctx, "head", k, http.MethodGet, u, nil, rangeFirstByte(), func(resp *http.Response) error {
		switch resp.StatusCode {
		case http.StatusOK, http.StatusPartialContent:
			meta = metadataFromResponse(resp)
			return nil
		case http.StatusNotFound:
			return newError(KindNotFound, "head", k, nil)
		default:
			return statusError("head", k, resp)
		}
	})
	return meta, err
}

func (s *RemoteStorage) FileExists(ctx context.Context, key string) (bool, error) {
	ctx, span := s.start(ctx, "exists", key)
	ok, err := s.exists(ctx, key)
	return ok, s.finish(span, "exists", err)
}

func (s *RemoteStorage) exists(ctx context.Context, key string) (bool, error) {
	k, err := s.NormalizeKey(key)
	if err != nil {
		return false, err
	}
	u, err := s.presign(http.MethodGet, k, headCheckExpiry, "")
	if err != nil {
		return false, err
	}
	var found bool
	err = s.send(ctx, "exists", k, http.MethodGet, u, nil, rangeFirstByte(), func(resp *http.Response) error {
		switch resp.StatusCode {
		case http.StatusOK, http.StatusPartialContent:
			found = true
			return nil
		case http.StatusNotFound:
			return nil
		default:
			return statusError("exists", k, resp)
		}
	})
	return found, err
}

func (s *RemoteStorage) BackendType() BackendType { return BackendRemote }

func (s *RemoteStorage) SupportsSTS() bool { return s.roleARN != "" }

func (s *RemoteStorage) DefaultSignedURLExpiry() time.Duration { return s.defaultExpiry }

func rangeFirstByte() http.Header {
	return http.Header{"Range": []string{"bytes=0-0"}}
}

// metadataFromResponse reads object metadata from HEAD or ranged GET headers. When the
// response carries a Content-Range, the size is its total and "*" leaves the
// size unknown.
func metadataFromResponse(resp *http.Response) ObjectMetadata {
	meta := ObjectMetadata{
		ContentType: resp.Header.Get("Content-Type"),
		ETag:        strings.Trim(resp.Header.Get("ETag"), `"`),
	}
	if cr := resp.Header.Get("Content-Range"); cr != "" {
		meta.ContentLength = ParseContentRangeTotal(cr)
		return meta
	}
	if n, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64); err == nil && n >= 0 {
		meta.ContentLength = &n
	} else if resp.ContentLength >= 0 {
		n := resp.ContentLength
		meta.ContentLength = &n
	}
	return meta
}

// ParseContentRangeTotal returns the total size from "bytes 0-0/<total>".
// It returns nil for "*" or a malformed header.
func ParseContentRangeTotal(value string) *int64 {
	i := strings.LastIndexByte(value, '/')
	if i < 0 {
		return nil
	}
	total := strings.TrimSpace(value[i+1:])
	if total == "*" {
		return nil
	}
	n, err := strconv.ParseInt(total, 10, 64)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// SanitizeFilename keeps ASCII letters, digits, '.', '-' and '_' and replaces
// every other character with '_'.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < 0x80 && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'),
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "download.bin"
	}
	return b.String()
}
