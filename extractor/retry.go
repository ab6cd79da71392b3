package extractor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrRateLimited wraps the last quota error once every retry is spent
var ErrRateLimited = errors.New("rate limited")

// Generator is the single vision-model call. *utils.GeminiClient satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt, mimeType string, data []byte) (string, error)
}

// rateVocabulary matches quota wording without catching words like "generate"
var rateVocabulary = regexp.MustCompile(`(?i)\b(?:rate|quota)\b|rate[- _]?limit|too many requests`)

// retryHint matches "retry in 30s" and the retryDelay field of quota errors
var retryHint = regexp.MustCompile(`(?i)retry\s*(?:in|Delay[":]*\s*)"?\s*(\d+)`)

// Client calls the model and retries only when the quota is exhausted
type Client struct {
	Generator  Generator
	MaxRetries int
	RetryWait  time.Duration
	// Sleep blocks between attempts; tests replace it to count waits
	Sleep func(time.Duration)
}

func NewClient(gen Generator, maxRetries int, retryWait time.Duration) *Client {
	return &Client{
		Generator:  gen,
		MaxRetries: maxRetries,
		RetryWait:  retryWait,
		Sleep:      time.Sleep,
	}
}

// Extract sends one image and returns the raw model text
func (c *Client) Extract(ctx context.Context, prompt, mimeType string, data []byte) (string, error) {
	for attempt := 0; ; attempt++ {
		text, err := c.Generator.Generate(ctx, prompt, mimeType, data)
		if err == nil {
			return text, nil
		}
		if !IsRateLimit(err) {
			return "", err
		}
		if attempt >= c.MaxRetries {
			return "", fmt.Errorf("%w after %d attempts: %v", ErrRateLimited, attempt+1, err)
		}

		wait := RetryDelay(err.Error(), c.RetryWait)
		log.Printf("[Gemini] rate limited, waiting %s before retry %d/%d", wait, attempt+1, c.MaxRetries)
		c.Sleep(wait)
	}
}

// IsRateLimit reports whether err is a quota error worth retrying
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return true
	}
	if s, ok := status.FromError(err); ok && s.Code() == codes.ResourceExhausted {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		rateVocabulary.MatchString(msg)
}

// RetryDelay reads the server's retry hint from msg. The result never drops
// below floor, which is also used when there is no hint.
func RetryDelay(msg string, floor time.Duration) time.Duration {
	m := retryHint.FindStringSubmatch(msg)
	if m == nil {
		return floor
	}
	secs, err := strconv.Atoi(m[1])
	if err != nil {
		return floor
	}
	return max(time.Duration(secs)*time.Second, floor)
}
