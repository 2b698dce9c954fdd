// SAR - Item-Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sar/internal/cache"
	"github.com/tomtom215/sar/internal/metrics"
	"github.com/tomtom215/sar/internal/recommend"
	"github.com/tomtom215/sar/internal/recommend/sar"
)

// Options limits request sizes and configures the response cache.
type Options struct {
	// MaxBatchUsers caps user_ids and seed items per request.
	MaxBatchUsers int

	// MaxK caps k.
	MaxK int

	// CacheEnabled turns on the response cache.
	CacheEnabled bool
	CacheTTL     time.Duration
	CacheSize    int

	// RequestTimeout bounds each scoring call.
	RequestTimeout time.Duration
}

// DefaultOptions returns the limits used when none are configured.
func DefaultOptions() Options {
	return Options{
		MaxBatchUsers:  1000,
		MaxK:           1000,
		CacheEnabled:   true,
		CacheTTL:       5 * time.Minute,
		CacheSize:      10000,
		RequestTimeout: 30 * time.Second,
	}
}

// Handler serves the current model.
type Handler struct {
	model atomic.Pointer[sar.Model]

	// swapMu orders model swaps against cache writes.
	swapMu sync.Mutex
	cache  *cache.LRU[any]
	opts   Options
	logger zerolog.Logger
}

// NewHandler returns a handler without a model; requests fail with
// MODEL_NOT_READY until SetModel is called.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(opts Options, logger zerolog.Logger) *Handler {
	h := &Handler{
		opts:   opts,
		logger: logger.With().Str("component", "api").Logger(),
	}
	if opts.CacheEnabled {
		h.cache = cache.New[any](opts.CacheSize, opts.CacheTTL)
	}
	return h
}

// SetModel installs a fitted model and drops cached responses.
func (h *Handler) SetModel(m *sar.Model) {
	h.swapMu.Lock()
	defer h.swapMu.Unlock()

	h.model.Store(m)
	if h.cache != nil {
		h.cache.Clear()
		metrics.CacheEntries.Set(0)
	}
}

func (h *Handler) current() (*sar.Model, error) {
	m := h.model.Load()
	if m == nil || !m.IsFitted() {
		return nil, recommend.ErrNotFitted
	}
	return m, nil
}

func (h *Handler) checkK(k int) error {
	if h.opts.MaxK > 0 && k > h.opts.MaxK {
		return fmt.Errorf("%w: k must be at most %d, got %d", recommend.ErrInvalidInput, h.opts.MaxK, k)
	}
	return nil
}

func (h *Handler) checkBatch(n int) error {
	if h.opts.MaxBatchUsers > 0 && n > h.opts.MaxBatchUsers {
		return fmt.Errorf("%w: at most %d entries per request, got %d", recommend.ErrInvalidInput, h.opts.MaxBatchUsers, n)
	}
	return nil
}

func (h *Handler) scoringContext(r *http.Request) (context.Context, context.CancelFunc) {
	if h.opts.RequestTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.opts.RequestTimeout)
}

// cached answers from the cache when key is present, otherwise computes,
// stores and answers. operation labels the scoring metrics.
func (h *Handler) cached(w http.ResponseWriter, r *http.Request, operation, key string, compute func(ctx context.Context, m *sar.Model) (any, error)) {
	start := time.Now()

	m, err := h.current()
	if err != nil {
		respondErr(w, r, err)
		return
	}

	if h.cache != nil && key != "" {
		data, hit := h.cache.Get(key)
		metrics.RecordCacheLookup(hit)
		if hit {
			resp := success(r, start, data)
			resp.Metadata.Cached = true
			respondJSON(w, http.StatusOK, resp)
			return
		}
	}

	ctx, cancel := h.scoringContext(r)
	defer cancel()

	data, err := compute(ctx, m)
	metrics.RecordScore(operation, time.Since(start), err)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	if h.cache != nil && key != "" {
		h.store(key, data, m)
	}
	respondJSON(w, http.StatusOK, success(r, start, data))
}

// store caches data unless the model that computed it has been replaced.
func (h *Handler) store(key string, data any, m *sar.Model) {
	h.swapMu.Lock()
	defer h.swapMu.Unlock()

	if h.model.Load() != m {
		h.logger.Debug().Str("key", key).Msg("Model replaced during scoring, result not cached")
		return
	}
	h.cache.Set(key, data)
	metrics.CacheEntries.Set(float64(h.cache.Len()))
}

// cacheKey builds a canonical key from an operation name and its request.
func cacheKey(operation string, req any) string {
	data, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	return operation + ":" + string(data)
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	_, err := h.current()
	status := map[string]any{
		"status": "ok",
		"ready":  err == nil,
	}
	if err != nil {
		status["status"] = "starting"
	}
	respondJSON(w, http.StatusOK, success(r, start, status))
}

// Stats handles GET /api/v1/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	m, err := h.current()
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, success(r, start, m.Stats()))
}

// UserRecommendations handles GET /api/v1/users/{userID}/recommendations.
func (h *Handler) UserRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if strings.TrimSpace(userID) == "" {
		respondErr(w, r, fmt.Errorf("%w: user id is required", recommend.ErrInvalidInput))
		return
	}

	k, err := queryInt(r, "k", defaultK)
	if err == nil {
		err = h.checkK(k)
	}
	var sorted, removeSeen, normalize bool
	if err == nil {
		sorted, err = queryBool(r, "sort", true)
	}
	if err == nil {
		removeSeen, err = queryBool(r, "remove_seen", false)
	}
	if err == nil {
		normalize, err = queryBool(r, "normalize", false)
	}
	if err != nil {
		respondErr(w, r, err)
		return
	}

	opts := sar.RecommendOptions{TopK: k, Sort: sorted, RemoveSeen: removeSeen, Normalize: normalize}
	h.recommend(w, r, []string{userID}, opts)
}

// Recommendations handles POST /api/v1/recommendations.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	req := RecommendRequest{K: defaultK}
	if err := decodeBody(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}
	if err := h.checkK(req.K); err != nil {
		respondErr(w, r, err)
		return
	}
	if err := h.checkBatch(len(req.UserIDs)); err != nil {
		respondErr(w, r, err)
		return
	}

	opts := sar.RecommendOptions{
		TopK:       req.K,
		Sort:       boolOr(req.Sort, true),
		RemoveSeen: req.RemoveSeen,
		Normalize:  req.Normalize,
	}
	h.recommend(w, r, req.UserIDs, opts)
}

func (h *Handler) recommend(w http.ResponseWriter, r *http.Request, userIDs []string, opts sar.RecommendOptions) {
	key := cacheKey("recommend", struct {
		Users []string
		Opts  sar.RecommendOptions
	}{userIDs, opts})

	h.cached(w, r, "recommend", key, func(ctx context.Context, m *sar.Model) (any, error) {
		return m.RecommendKItems(ctx, userIDs, opts)
	})
}

// Predict handles POST /api/v1/predict. Results are not cached.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := decodeBody(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}
	if err := h.checkBatch(len(req.Pairs)); err != nil {
		respondErr(w, r, err)
		return
	}

	pairs := make([]recommend.UserItem, len(req.Pairs))
	for i, p := range req.Pairs {
		pairs[i] = recommend.UserItem{UserID: p.UserID, ItemID: p.ItemID}
	}

	h.cached(w, r, "predict", "", func(ctx context.Context, m *sar.Model) (any, error) {
		res, err := m.Predict(ctx, pairs)
		if err != nil {
			return nil, err
		}
		metrics.RecordUnseenItems(len(res.UnseenItems))
		return res, nil
	})
}

// Similar handles POST /api/v1/similar.
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	req := SimilarRequest{K: defaultK}
	if err := decodeBody(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}
	if err := h.checkK(req.K); err != nil {
		respondErr(w, r, err)
		return
	}
	if err := h.checkBatch(len(req.Items)); err != nil {
		respondErr(w, r, err)
		return
	}

	seeds := sar.SeedSet{Items: req.Items, Users: req.Users, Ratings: req.Ratings}
	sorted := boolOr(req.Sort, true)
	key := cacheKey("similar", struct {
		Seeds sar.SeedSet
		K     int
		Sort  bool
	}{seeds, req.K, sorted})

	h.cached(w, r, "similar", key, func(ctx context.Context, m *sar.Model) (any, error) {
		return m.ItemBasedTopK(ctx, seeds, req.K, sorted)
	})
}

// Popular handles GET /api/v1/popular.
func (h *Handler) Popular(w http.ResponseWriter, r *http.Request) {
	k, err := queryInt(r, "k", defaultK)
	if err == nil {
		err = h.checkK(k)
	}
	var sorted bool
	if err == nil {
		sorted, err = queryBool(r, "sort", true)
	}
	if err != nil {
		respondErr(w, r, err)
		return
	}

	key := fmt.Sprintf("popular:%d:%t", k, sorted)
	h.cached(w, r, "popular", key, func(_ context.Context, m *sar.Model) (any, error) {
		return m.PopularityTopK(k, sorted)
	})
}
