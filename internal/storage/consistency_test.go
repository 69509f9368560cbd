package storage_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shareapi/internal/storage"
	"shareapi/internal/storage/mocks"
)

var fast = storage.WithSchedule(0, time.Millisecond, time.Millisecond)

func notFound(key string) error {
	return &storage.Error{Kind: storage.KindNotFound, Op: "head", Key: key}
}

func TestDefaultHeadRetrySchedule(t *testing.T) {
	assert.Equal(t, []time.Duration{0, 200 * time.Millisecond, 500 * time.Millisecond}, storage.DefaultHeadRetrySchedule)
}

func TestHeadWithRetry_EventuallyVisible(t *testing.T) {
	ctx := context.Background()
	size := int64(42)
	want := storage.ObjectMetadata{ContentLength: &size, ContentType: "application/pdf", ETag: "abc"}

	st := new(mocks.MockStorage)
	st.On("HeadFile", ctx, "resources/x.pdf").Return(storage.ObjectMetadata{}, notFound("resources/x.pdf")).Twice()
	st.On("HeadFile", ctx, "resources/x.pdf").Return(want, nil).Once()

	got, err := storage.HeadWithRetry(ctx, st, "resources/x.pdf", fast)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	st.AssertNumberOfCalls(t, "HeadFile", 3)
}

func TestHeadWithRetry_FirstAttemptSucceeds(t *testing.T) {
	ctx := context.Background()
	st := new(mocks.MockStorage)
	st.On("HeadFile", ctx, "images/a.png").Return(storage.ObjectMetadata{ContentType: "image/png"}, nil).Once()

	start := time.Now()
	got, err := storage.HeadWithRetry(ctx, st, "images/a.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", got.ContentType)
	assert.Less(t, time.Since(start), 150*time.Millisecond, "first attempt must not wait")
	st.AssertNumberOfCalls(t, "HeadFile", 1)
}

func TestHeadWithRetry_NeverVisible(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	reg := prometheus.NewRegistry()
	m, err := storage.NewMetrics(reg)
	require.NoError(t, err)

	st := new(mocks.MockStorage)
	st.On("HeadFile", ctx, "resources/x.pdf").Return(storage.ObjectMetadata{}, notFound("resources/x.pdf"))

	start := time.Now()
	_, err = storage.HeadWithRetry(ctx, st, "resources/x.pdf",
		storage.WithRetryLogger(zerolog.New(&buf)),
		storage.WithRetryMetrics(m),
	)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, storage.IsNotFound(err), "underlying kind must survive wrapping")
	assert.Contains(t, err.Error(), `head "resources/x.pdf" failed after 3 attempts`)
	st.AssertNumberOfCalls(t, "HeadFile", 3)
	assert.GreaterOrEqual(t, elapsed, 700*time.Millisecond)

	logs := buf.String()
	for _, attempt := range []string{`"attempt":"1/3"`, `"attempt":"2/3"`, `"attempt":"3/3"`} {
		assert.Contains(t, logs, attempt)
	}

	expected := `
# HELP storage_head_retries_total Metadata requests repeated while waiting for an upload to become visible.
# TYPE storage_head_retries_total counter
storage_head_retries_total 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "storage_head_retries_total"))
}

func TestHeadWithRetry_NoRetryOnPermanentErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		is   error
	}{
		{name: "validation", err: &storage.Error{Kind: storage.KindValidation, Op: "normalize"}, is: storage.ErrValidation},
		{name: "config", err: &storage.Error{Kind: storage.KindConfig, Op: "presign"}, is: storage.ErrConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			st := new(mocks.MockStorage)
			st.On("HeadFile", ctx, "resources/x.pdf").Return(storage.ObjectMetadata{}, tt.err)

			_, err := storage.HeadWithRetry(ctx, st, "resources/x.pdf", fast)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.is))
			assert.NotContains(t, err.Error(), "attempts")
			st.AssertNumberOfCalls(t, "HeadFile", 1)
		})
	}
}

func TestHeadWithRetry_RetriesBackendErrors(t *testing.T) {
	ctx := context.Background()
	st := new(mocks.MockStorage)
	st.On("HeadFile", ctx, "resources/x.pdf").
		Return(storage.ObjectMetadata{}, &storage.Error{Kind: storage.KindBackend, Op: "head", StatusCode: 503})

	_, err := storage.HeadWithRetry(ctx, st, "resources/x.pdf", storage.WithSchedule(0, 0, 0, 0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrBackend))
	assert.Contains(t, err.Error(), "after 4 attempts")
	st.AssertNumberOfCalls(t, "HeadFile", 4)
}

func TestHeadWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := new(mocks.MockStorage)
	st.On("HeadFile", mock.Anything, "resources/x.pdf").
		Run(func(mock.Arguments) { cancel() }).
		Return(storage.ObjectMetadata{}, notFound("resources/x.pdf"))

	reg := prometheus.NewRegistry()
	m, err := storage.NewMetrics(reg)
	require.NoError(t, err)

	start := time.Now()
	_, err = storage.HeadWithRetry(ctx, st, "resources/x.pdf", storage.WithSchedule(0, time.Hour), storage.WithRetryMetrics(m))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Less(t, time.Since(start), time.Second)
	st.AssertNumberOfCalls(t, "HeadFile", 1)

	// The second attempt never ran, so no retry is counted.
	expected := `
# HELP storage_head_retries_total Metadata requests repeated while waiting for an upload to become visible.
# TYPE storage_head_retries_total counter
storage_head_retries_total 0
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "storage_head_retries_total"))
}
