// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package api

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sar/internal/recommend"
	"github.com/tomtom215/sar/internal/recommend/sar"
)

type envelope struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Metadata Metadata        `json:"metadata"`
	Error    *APIError       `json:"error"`
}

func fittedModel(t *testing.T) *sar.Model {
	t.Helper()
	m, err := sar.New(recommend.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	rows := []recommend.Interaction{
		{UserID: "A", ItemID: "x", Rating: 5},
		{UserID: "A", ItemID: "y", Rating: 3},
		{UserID: "B", ItemID: "x", Rating: 4},
		{UserID: "B", ItemID: "z", Rating: 2},
		{UserID: "C", ItemID: "y", Rating: 1},
	}
	if err := m.Fit(context.Background(), rows, sar.FitOptions{}); err != nil {
		t.Fatal(err)
	}
	return m
}

func newTestServer(t *testing.T, withModel bool) (http.Handler, *Handler) {
	t.Helper()
	opts := DefaultOptions()
	opts.MaxK = 50
	opts.MaxBatchUsers = 3
	h := NewHandler(opts, zerolog.Nop())
	if withModel {
		h.SetModel(fittedModel(t))
	}
	cfg := DefaultMiddlewareConfig()
	cfg.RateLimitRequests = 0
	return NewRouter(h, cfg), h
}

func do(t *testing.T, srv http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response: %v: %s", err, rec.Body.String())
		}
	}
	return rec, env
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, false)
	rec, env := do(t, srv, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || env.Status != "success" {
		t.Fatalf("GET /healthz = %d %+v", rec.Code, env)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
	if !strings.Contains(string(env.Data), `"ready":false`) {
		t.Errorf("data = %s, want ready false before a model is set", env.Data)
	}
}

func TestModelNotReady(t *testing.T) {
	srv, _ := newTestServer(t, false)
	rec, env := do(t, srv, http.MethodGet, "/api/v1/stats", "")
	if rec.Code != http.StatusServiceUnavailable || env.Error == nil || env.Error.Code != ErrCodeModelNotReady {
		t.Errorf("GET /api/v1/stats = %d %+v", rec.Code, env.Error)
	}
}

func TestUserRecommendations(t *testing.T) {
	srv, _ := newTestServer(t, true)

	rec, env := do(t, srv, http.MethodGet, "/api/v1/users/A/recommendations?k=1&remove_seen=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var recs []recommend.Recommendation
	if err := json.Unmarshal(env.Data, &recs); err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].ItemID != "z" || math.Abs(recs[0].Score-2.5) > 1e-9 {
		t.Errorf("recommendations = %+v, want [A z 2.5]", recs)
	}
	if env.Metadata.Cached {
		t.Error("first response reported as cached")
	}

	_, env = do(t, srv, http.MethodGet, "/api/v1/users/A/recommendations?k=1&remove_seen=true", "")
	if !env.Metadata.Cached {
		t.Error("second identical request was not served from the cache")
	}
}

func TestRecommendations_Errors(t *testing.T) {
	srv, _ := newTestServer(t, true)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{
			name:     "unknown user",
			method:   http.MethodGet,
			path:     "/api/v1/users/nobody/recommendations",
			wantCode: http.StatusNotFound,
			wantErr:  ErrCodeUnknownEntity,
		},
		{
			name:     "normalization unavailable",
			method:   http.MethodGet,
			path:     "/api/v1/users/A/recommendations?normalize=true",
			wantCode: http.StatusConflict,
			wantErr:  ErrCodeNormalizationUnavailable,
		},
		{
			name:     "bad k",
			method:   http.MethodGet,
			path:     "/api/v1/users/A/recommendations?k=zero",
			wantCode: http.StatusBadRequest,
			wantErr:  ErrCodeInvalidInput,
		},
		{
			name:     "k above limit",
			method:   http.MethodGet,
			path:     "/api/v1/popular?k=51",
			wantCode: http.StatusBadRequest,
			wantErr:  ErrCodeInvalidInput,
		},
		{
			name:     "empty user list",
			method:   http.MethodPost,
			path:     "/api/v1/recommendations",
			body:     `{"user_ids": []}`,
			wantCode: http.StatusBadRequest,
			wantErr:  ErrCodeValidation,
		},
		{
			name:     "too many users",
			method:   http.MethodPost,
			path:     "/api/v1/recommendations",
			body:     `{"user_ids": ["A", "B", "C", "A"]}`,
			wantCode: http.StatusBadRequest,
			wantErr:  ErrCodeInvalidInput,
		},
		{
			name:     "malformed json",
			method:   http.MethodPost,
			path:     "/api/v1/predict",
			body:     `{"pairs": [`,
			wantCode: http.StatusBadRequest,
			wantErr:  ErrCodeInvalidInput,
		},
		{
			name:     "unknown seed item",
			method:   http.MethodPost,
			path:     "/api/v1/similar",
			body:     `{"items": ["w"]}`,
			wantCode: http.StatusNotFound,
			wantErr:  ErrCodeUnknownEntity,
		},
		{
			name:     "unknown route",
			method:   http.MethodGet,
			path:     "/api/v1/nothing",
			wantCode: http.StatusNotFound,
			wantErr:  ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, srv, tt.method, tt.path, tt.body)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if env.Status != "error" || env.Error == nil || env.Error.Code != tt.wantErr {
				t.Errorf("error = %+v, want code %s", env.Error, tt.wantErr)
			}
		})
	}
}

func TestBatchRecommendations(t *testing.T) {
	srv, _ := newTestServer(t, true)

	rec, env := do(t, srv, http.MethodPost, "/api/v1/recommendations", `{"user_ids": ["A", "B"], "k": 3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var recs []recommend.Recommendation
	if err := json.Unmarshal(env.Data, &recs); err != nil {
		t.Fatal(err)
	}
	if len(recs) != 6 {
		t.Errorf("got %d rows, want 3 per user", len(recs))
	}
	if !strings.Contains(string(env.Data), `"prediction"`) {
		t.Errorf("rows lack the prediction field: %s", env.Data)
	}
}

func TestPredict(t *testing.T) {
	srv, _ := newTestServer(t, true)

	rec, env := do(t, srv, http.MethodPost, "/api/v1/predict",
		`{"pairs": [{"user_id": "A", "item_id": "z"}, {"user_id": "A", "item_id": "w"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var res sar.PredictResult
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Predictions) != 2 || math.Abs(res.Predictions[0].Score-2.5) > 1e-9 || res.Predictions[1].Score != 0 {
		t.Errorf("predictions = %+v", res.Predictions)
	}
	if len(res.UnseenItems) != 1 || res.UnseenItems[0] != "w" {
		t.Errorf("unseen items = %v, want [w]", res.UnseenItems)
	}
}

func TestSimilarAndPopular(t *testing.T) {
	srv, _ := newTestServer(t, true)

	rec, env := do(t, srv, http.MethodPost, "/api/v1/similar", `{"items": ["x"], "k": 5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("similar status = %d, body %s", rec.Code, rec.Body.String())
	}
	var recs []recommend.Recommendation
	if err := json.Unmarshal(env.Data, &recs); err != nil {
		t.Fatal(err)
	}
	for _, r := range recs {
		if r.ItemID == "x" {
			t.Errorf("seed item x recommended to itself: %+v", recs)
		}
	}

	rec, env = do(t, srv, http.MethodGet, "/api/v1/popular?k=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("popular status = %d, body %s", rec.Code, rec.Body.String())
	}
	var pop []recommend.ItemScore
	if err := json.Unmarshal(env.Data, &pop); err != nil {
		t.Fatal(err)
	}
	if len(pop) != 1 || pop[0].ItemID != "x" || pop[0].Score != 2 {
		t.Errorf("popular = %+v, want [x 2]", pop)
	}
}

func TestSetModel_ClearsCache(t *testing.T) {
	srv, h := newTestServer(t, true)

	do(t, srv, http.MethodGet, "/api/v1/popular", "")
	if h.cache.Len() == 0 {
		t.Fatal("popular response was not cached")
	}
	h.SetModel(fittedModel(t))
	if h.cache.Len() != 0 {
		t.Errorf("cache holds %d entries after SetModel", h.cache.Len())
	}
}

func TestCached_DropsResultOfReplacedModel(t *testing.T) {
	h := NewHandler(DefaultOptions(), zerolog.Nop())
	h.SetModel(fittedModel(t))
	replacement := fittedModel(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/A/recommendations", nil)
	rec := httptest.NewRecorder()
	h.cached(rec, req, "recommend", "k1", func(ctx context.Context, m *sar.Model) (any, error) {
		res, err := m.RecommendKItems(ctx, []string{"A"}, sar.RecommendOptions{TopK: 3, Sort: true})
		h.SetModel(replacement)
		return res, err
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if _, hit := h.cache.Get("k1"); hit {
		t.Error("result computed on the replaced model was cached")
	}

	rec = httptest.NewRecorder()
	h.cached(rec, req, "recommend", "k1", func(ctx context.Context, m *sar.Model) (any, error) {
		if m != replacement {
			t.Error("compute ran on the replaced model")
		}
		return m.RecommendKItems(ctx, []string{"A"}, sar.RecommendOptions{TopK: 3, Sort: true})
	})
	if _, hit := h.cache.Get("k1"); !hit {
		t.Error("result computed on the current model was not cached")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, true)
	do(t, srv, http.MethodGet, "/api/v1/stats", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "sar_http_request_duration_seconds") {
		t.Errorf("GET /metrics = %d, missing sar_http_request_duration_seconds", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	h := NewHandler(DefaultOptions(), zerolog.Nop())
	h.SetModel(fittedModel(t))
	cfg := DefaultMiddlewareConfig()
	cfg.RateLimitRequests = 1
	srv := NewRouter(h, cfg)

	do(t, srv, http.MethodGet, "/api/v1/stats", "")
	rec, env := do(t, srv, http.MethodGet, "/api/v1/stats", "")
	if rec.Code != http.StatusTooManyRequests || env.Error == nil || env.Error.Code != ErrCodeTooManyRequests {
		t.Errorf("second request = %d %+v, want 429", rec.Code, env.Error)
	}
}
