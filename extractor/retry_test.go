package extractor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// scriptedGenerator returns errs in order, then text
type scriptedGenerator struct {
	errs  []error
	text  string
	calls int
}

func (g *scriptedGenerator) Generate(context.Context, string, string, []byte) (string, error) {
	g.calls++
	if g.calls <= len(g.errs) {
		return "", g.errs[g.calls-1]
	}
	return g.text, nil
}

func newTestClient(gen Generator) (*Client, *[]time.Duration) {
	var waits []time.Duration
	c := NewClient(gen, 2, 90*time.Second)
	c.Sleep = func(d time.Duration) { waits = append(waits, d) }
	return c, &waits
}

func TestExtract_RecoversAfterTwoRateLimits(t *testing.T) {
	quota := errors.New("googleapi: Error 429: RESOURCE_EXHAUSTED")
	gen := &scriptedGenerator{errs: []error{quota, quota}, text: `{"products":[]}`}
	c, waits := newTestClient(gen)

	text, err := c.Extract(context.Background(), "prompt", "image/jpeg", []byte{1})
	require.NoError(t, err)
	assert.Equal(t, `{"products":[]}`, text)
	assert.Equal(t, 3, gen.calls)
	assert.Equal(t, []time.Duration{90 * time.Second, 90 * time.Second}, *waits)
}

func TestExtract_NoRetryOnOtherErrors(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{errors.New("invalid argument: image too large")}}
	c, waits := newTestClient(gen)

	_, err := c.Extract(context.Background(), "prompt", "image/jpeg", nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRateLimited))
	assert.Equal(t, 1, gen.calls)
	assert.Empty(t, *waits)
}

func TestExtract_ExhaustsRetries(t *testing.T) {
	quota := &googleapi.Error{Code: 429, Message: "quota exceeded"}
	gen := &scriptedGenerator{errs: []error{quota, quota, quota, quota}}
	c, waits := newTestClient(gen)

	_, err := c.Extract(context.Background(), "prompt", "image/jpeg", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.Equal(t, 3, gen.calls)
	assert.Len(t, *waits, 2)
}

func TestExtract_HonorsLongerHint(t *testing.T) {
	hinted := errors.New(`[429 Too Many Requests] {"retryDelay": "120s"}`)
	gen := &scriptedGenerator{errs: []error{hinted}, text: "ok"}
	c, waits := newTestClient(gen)

	_, err := c.Extract(context.Background(), "prompt", "image/jpeg", nil)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{120 * time.Second}, *waits)
}

func TestRetryDelay(t *testing.T) {
	floor := 90 * time.Second
	tests := []struct {
		msg  string
		want time.Duration
	}{
		{"Please retry in 30s.", floor},
		{"Please retry in 150.5s.", 150 * time.Second},
		{`"retryDelay": "45s"`, floor},
		{`"retryDelay":"200s"`, 200 * time.Second},
		{"RESOURCE_EXHAUSTED", floor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RetryDelay(tt.msg, floor), tt.msg)
	}
}

func TestIsRateLimit(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"googleapi 429", fmt.Errorf("wrapped: %w", &googleapi.Error{Code: 429}), true},
		{"googleapi 400", &googleapi.Error{Code: 400, Message: "bad image"}, false},
		{"grpc resource exhausted", status.Error(codes.ResourceExhausted, "slow down"), true},
		{"grpc invalid argument", status.Error(codes.InvalidArgument, "bad"), false},
		{"vocabulary", errors.New("rate limit exceeded"), true},
		{"quota", errors.New("daily quota reached"), true},
		{"generate is not rate", errors.New("gemini request failed: could not generate"), false},
		{"status text", errors.New("RESOURCE_EXHAUSTED"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRateLimit(tt.err))
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(2026)
	assert.Contains(t, p, "今年は2026年です")
	assert.Contains(t, p, `"日用品"`)
	assert.Contains(t, p, `"他"`)
	assert.NotContains(t, p, "%!")
}
