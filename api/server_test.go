package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/raushankrgupta/flyer-price-scraper/models"
	"github.com/raushankrgupta/flyer-price-scraper/storage"
	"github.com/raushankrgupta/flyer-price-scraper/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

type memoryReader map[string]*models.DailySnapshot

func (m memoryReader) Latest(context.Context) (*models.DailySnapshot, error) {
	var latest *models.DailySnapshot
	for _, s := range m {
		if latest == nil || s.Date > latest.Date {
			latest = s
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}
	return latest, nil
}

func (m memoryReader) ByDate(_ context.Context, date string) (*models.DailySnapshot, error) {
	if s, ok := m[date]; ok {
		return s, nil
	}
	return nil, storage.ErrNotFound
}

type fakeArchive struct {
	err   error
	dates []string
}

func (f *fakeArchive) PresignedURL(_ context.Context, date string) (string, error) {
	f.dates = append(f.dates, date)
	if f.err != nil {
		return "", f.err
	}
	return "https://archive.example/snapshots/" + date + ".json?sig=x", nil
}

func newTestServer(t *testing.T, reader storage.Reader, run RunFunc) *Server {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	if reader == nil {
		reader = memoryReader{}
	}
	if run == nil {
		run = func(context.Context) error { return nil }
	}
	return NewServer(reader, AuthConfig{JWTSecret: testSecret, AdminPasswordHash: string(hash)}, run)
}

func do(s *Server, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(newTestServer(t, nil, nil), http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSnapshots(t *testing.T) {
	reader := memoryReader{
		"2026-02-16": {Date: "2026-02-16", Stores: []models.StoreSnapshot{}},
		"2026-02-17": {Date: "2026-02-17", Stores: []models.StoreSnapshot{}},
	}
	s := newTestServer(t, reader, nil)

	rec := do(s, http.MethodGet, "/snapshots/latest", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.DailySnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "2026-02-17", got.Date)

	rec = do(s, http.MethodGet, "/snapshots/2026-02-16", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"date":"2026-02-16"`)

	rec = do(s, http.MethodGet, "/snapshots/2026-01-01", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(s, http.MethodGet, "/snapshots/yesterday", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLatestSnapshot_Empty(t *testing.T) {
	rec := do(newTestServer(t, nil, nil), http.MethodGet, "/snapshots/latest", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := do(s, http.MethodPost, "/auth/login", `{"password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(s, http.MethodPost, "/auth/login", `not json`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(s, http.MethodPost, "/auth/login", `{"password":"hunter2"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	sub, err := utils.ValidateToken(testSecret, body["token"])
	require.NoError(t, err)
	assert.Equal(t, "admin", sub)
}

func TestScrape_RequiresToken(t *testing.T) {
	s := newTestServer(t, nil, nil)

	assert.Equal(t, http.StatusUnauthorized, do(s, http.MethodPost, "/scrape", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(s, http.MethodPost, "/scrape", "", "garbage").Code)
}

func TestScrape_SingleRunAtATime(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	s := newTestServer(t, nil, func(context.Context) error {
		started <- struct{}{}
		<-release
		return nil
	})
	token, err := utils.GenerateToken(testSecret, "admin")
	require.NoError(t, err)

	assert.Equal(t, http.StatusAccepted, do(s, http.MethodPost, "/scrape", "", token).Code)
	<-started
	assert.Equal(t, http.StatusConflict, do(s, http.MethodPost, "/scrape", "", token).Code)

	close(release)
	s.Wait()

	assert.Equal(t, http.StatusAccepted, do(s, http.MethodPost, "/scrape", "", token).Code)
	s.Wait()
	assert.Len(t, started, 1)
}

func TestArchiveLink(t *testing.T) {
	reader := memoryReader{"2026-02-17": {Date: "2026-02-17", Stores: []models.StoreSnapshot{}}}
	token, err := utils.GenerateToken(testSecret, "admin")
	require.NoError(t, err)

	t.Run("not configured", func(t *testing.T) {
		s := newTestServer(t, reader, nil)
		rec := do(s, http.MethodGet, "/snapshots/2026-02-17/archive", "", token)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("requires token", func(t *testing.T) {
		s := newTestServer(t, reader, nil)
		s.SetArchive(&fakeArchive{})
		rec := do(s, http.MethodGet, "/snapshots/2026-02-17/archive", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("signed link", func(t *testing.T) {
		archive := &fakeArchive{}
		s := newTestServer(t, reader, nil)
		s.SetArchive(archive)

		rec := do(s, http.MethodGet, "/snapshots/2026-02-17/archive", "", token)
		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "2026-02-17", body["date"])
		assert.Equal(t, "https://archive.example/snapshots/2026-02-17.json?sig=x", body["url"])
		assert.Equal(t, []string{"2026-02-17"}, archive.dates)
	})

	t.Run("bad date and unknown date", func(t *testing.T) {
		archive := &fakeArchive{}
		s := newTestServer(t, reader, nil)
		s.SetArchive(archive)

		assert.Equal(t, http.StatusBadRequest, do(s, http.MethodGet, "/snapshots/today/archive", "", token).Code)
		assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/snapshots/2026-01-01/archive", "", token).Code)
		assert.Empty(t, archive.dates)
	})

	t.Run("signing failure", func(t *testing.T) {
		s := newTestServer(t, reader, nil)
		s.SetArchive(&fakeArchive{err: errors.New("no credentials")})
		rec := do(s, http.MethodGet, "/snapshots/2026-02-17/archive", "", token)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}
