package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaultpass/passgen-go/internal/crypto"
	"github.com/vaultpass/passgen-go/internal/model"
	"github.com/vaultpass/passgen-go/internal/service"
)

const testSecret = "test-secret"

type fakeStore struct {
	records []model.GenerationRecord
	err     error
}

func (f *fakeStore) Insert(_ context.Context, rec *model.GenerationRecord) error {
	if f.err != nil {
		return f.err
	}
	rec.ID = "rec-" + rec.Label
	rec.CreatedAt = time.Now()
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeStore) Recent(_ context.Context, limit int) ([]model.GenerationRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.records) {
		return f.records[:limit], nil
	}
	return f.records, nil
}

func (f *fakeStore) CountByLabel(context.Context) (map[string]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	counts := make(map[string]int)
	for _, r := range f.records {
		counts[r.Label]++
	}
	return counts, nil
}

func newTestRouter(t *testing.T, store *fakeStore) http.Handler {
	t.Helper()
	cfg := RouterConfig{
		TokenSecret:    testSecret,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
	if store != nil {
		cfg.Generator = NewGeneratorHandler(service.NewGeneratorService(crypto.NewGenerator(), 256, store))
		cfg.History = NewHistoryHandler(service.NewHistoryService(store))
	} else {
		cfg.Generator = NewGeneratorHandler(service.NewGeneratorService(crypto.NewGenerator(), 256, nil))
	}
	return NewRouter(t.Context(), cfg)
}

func do(t *testing.T, h http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(t, nil), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHandleGenerate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantErr    string
	}{
		{"no body uses defaults", "", http.StatusOK, ""},
		{"lower and numbers", `{"length":12,"classes":["lower","numbers"],"exclude":"aeiou"}`, http.StatusOK, ""},
		{"within mode", `{"length":8,"each_class":"within"}`, http.StatusOK, ""},
		{"invalid json", `{"length":`, http.StatusBadRequest, "invalid request body"},
		{"no classes", `{"length":12,"classes":[]}`, http.StatusBadRequest, "invalid generator configuration"},
		{"unknown class", `{"classes":["emoji"]}`, http.StatusBadRequest, "unknown character class"},
		{"too long", `{"length":100000}`, http.StatusBadRequest, "exceeds"},
		{"empty pool", `{"length":100,"classes":["numbers"],"exclude":"0123456789"}`, http.StatusUnprocessableEntity, "no candidate characters"},
	}

	h := newTestRouter(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/v1/generate", tt.body, nil)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			if tt.wantErr != "" {
				var body map[string]string
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Contains(t, body["error"], tt.wantErr)
				return
			}

			var resp model.GenerateResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, len([]rune(resp.Password)), resp.Length)
			assert.NotEmpty(t, resp.Strength.Label)
		})
	}
}

func TestHandleGenerateBodyTooLarge(t *testing.T) {
	body := `{"exclude":"` + strings.Repeat("x", maxBodyBytes) + `"}`

	rec := do(t, newTestRouter(t, nil), http.MethodPost, "/api/v1/generate", body, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandleStrength(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodPost, "/api/v1/strength", `{"password":"abc123"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.StrengthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.InDelta(t, 31.02, resp.Entropy, 0.01)
	assert.Equal(t, "Moderate", resp.Label)

	rec = do(t, h, http.MethodPost, "/api/v1/strength", `{"password":""}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 0.0, resp.Entropy)
	assert.Equal(t, "Weak", resp.Label)

	rec = do(t, h, http.MethodPost, "/api/v1/strength", `{"password":"`+strings.Repeat("a", 300)+`"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryNotMountedWithoutStore(t *testing.T) {
	rec := do(t, newTestRouter(t, nil), http.MethodGet, "/api/v1/history", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryRoutes(t *testing.T) {
	store := &fakeStore{}
	h := newTestRouter(t, store)

	for i := 0; i < 3; i++ {
		rec := do(t, h, http.MethodPost, "/api/v1/generate", `{"length":20}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	require.Len(t, store.records, 3)

	rec := do(t, h, http.MethodGet, "/api/v1/history", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := crypto.GenerateToken("ops", testSecret, time.Hour)
	require.NoError(t, err)
	auth := map[string]string{"Authorization": "Bearer " + token}

	rec = do(t, h, http.MethodGet, "/api/v1/history?limit=2", "", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	var history model.HistoryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&history))
	assert.Len(t, history.Records, 2)
	assert.Equal(t, 20, history.Records[0].Length)

	rec = do(t, h, http.MethodGet, "/api/v1/history?limit=abc", "", auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/history/stats", "", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats model.HistoryStats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.Equal(t, 3, stats.Total)
}

func TestHistoryStoreError(t *testing.T) {
	h := newTestRouter(t, &fakeStore{err: errors.New("db down")})

	token, err := crypto.GenerateToken("ops", testSecret, time.Hour)
	require.NoError(t, err)
	auth := map[string]string{"Authorization": "Bearer " + token}

	assert.Equal(t, http.StatusInternalServerError, do(t, h, http.MethodGet, "/api/v1/history", "", auth).Code)
	assert.Equal(t, http.StatusInternalServerError, do(t, h, http.MethodGet, "/api/v1/history/stats", "", auth).Code)

	// Generation still succeeds when history cannot be written.
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/v1/generate", "", nil).Code)
}
