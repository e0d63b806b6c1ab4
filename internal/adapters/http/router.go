package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/shape-stylist/internal/config"
	"github.com/kirillkom/shape-stylist/internal/core/domain"
	"github.com/kirillkom/shape-stylist/internal/core/ports"
	"github.com/kirillkom/shape-stylist/internal/observability/metrics"
)

const (
	shopHeader     = "X-Shopify-Shop-Domain"
	maxRequestBody = 1 << 20
	xlsxMIME       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	metricsService = "api"
)

type Router struct {
	cfg         config.Config
	bodyShape   ports.BodyShapeService
	recommender ports.ShopRecommender
	settings    ports.SettingsService
	analyzer    ports.CatalogAnalyzer
	metrics     *metrics.HTTPServerMetrics
}

// NewRouter accepts nil metrics, which disables /metrics and request metrics.
func NewRouter(
	cfg config.Config,
	bodyShape ports.BodyShapeService,
	recommender ports.ShopRecommender,
	settings ports.SettingsService,
	analyzer ports.CatalogAnalyzer,
	httpMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:         cfg,
		bodyShape:   bodyShape,
		recommender: recommender,
		settings:    settings,
		analyzer:    analyzer,
		metrics:     httpMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /v1/body-shape", rt.classifyBodyShape)
	mux.HandleFunc("GET /v1/profiles/{customer}", rt.getProfile)
	mux.HandleFunc("POST /v1/recommendations", rt.recommend)
	mux.HandleFunc("GET /v1/settings", rt.getSettings)
	mux.HandleFunc("PUT /v1/settings", rt.putSettings)
	mux.HandleFunc("POST /v1/catalog/analyze", rt.analyzeCatalog)
	mux.HandleFunc("GET /v1/catalog/analysis.xlsx", rt.exportAnalysis)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(
		handler,
		rt.cfg.APIBackpressureMaxInFlight,
		time.Duration(rt.cfg.APIBackpressureWaitMS)*time.Millisecond,
	)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(metricsService, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type classifyRequest struct {
	CustomerID string `json:"customer_id"`
	domain.Measurements
}

func (rt *Router) classifyBodyShape(w http.ResponseWriter, r *http.Request) {
	shop, ok := rt.requireShop(w, r)
	if !ok {
		return
	}
	var req classifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := rt.bodyShape.Classify(r.Context(), shop, strings.TrimSpace(req.CustomerID), req.Measurements)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordClassification(metricsService, profile.Result.Shape)
	}
	writeJSON(w, http.StatusOK, profile)
}

func (rt *Router) getProfile(w http.ResponseWriter, r *http.Request) {
	shop, ok := rt.requireShop(w, r)
	if !ok {
		return
	}
	profile, err := rt.bodyShape.GetProfile(r.Context(), shop, r.PathValue("customer"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// recommendRequest mirrors domain.RecommendationRequest; AIEnabled is a pointer
// so an omitted flag means "use AI when the shop allows it".
type recommendRequest struct {
	CustomerID    string               `json:"customer_id"`
	Shape         string               `json:"shape"`
	Measurements  *domain.Measurements `json:"measurements"`
	ColorSeason   string               `json:"color_season"`
	Count         int                  `json:"count"`
	MinScore      int                  `json:"min_score"`
	StockOnly     bool                 `json:"stock_only"`
	AIEnabled     *bool                `json:"ai_enabled"`
	ImageAnalysis bool                 `json:"image_analysis"`
	AI            domain.AIOptions     `json:"ai"`
}

func (req recommendRequest) toDomain() domain.RecommendationRequest {
	aiEnabled := true
	if req.AIEnabled != nil {
		aiEnabled = *req.AIEnabled
	}
	return domain.RecommendationRequest{
		Shape:         req.Shape,
		Measurements:  req.Measurements,
		ColorSeason:   strings.ToLower(strings.TrimSpace(req.ColorSeason)),
		Count:         req.Count,
		MinScore:      req.MinScore,
		StockOnly:     req.StockOnly,
		AIEnabled:     aiEnabled,
		ImageAnalysis: req.ImageAnalysis,
		AI:            req.AI,
	}
}

func (rt *Router) recommend(w http.ResponseWriter, r *http.Request) {
	shop, ok := rt.requireShop(w, r)
	if !ok {
		return
	}
	var req recommendRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	start := time.Now()
	result, err := rt.recommender.RecommendForShop(r.Context(), shop, strings.TrimSpace(req.CustomerID), req.toDomain())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordRecommendation(
			metricsService,
			string(result.Source),
			result.FallbackReason,
			result.Truncated,
			result.Scanned,
			time.Since(start),
		)
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) getSettings(w http.ResponseWriter, r *http.Request) {
	shop, ok := rt.requireShop(w, r)
	if !ok {
		return
	}
	settings, err := rt.settings.Get(r.Context(), shop)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (rt *Router) putSettings(w http.ResponseWriter, r *http.Request) {
	shop, ok := rt.requireShop(w, r)
	if !ok {
		return
	}
	// Start from the stored settings so partial bodies only change the fields they name.
	current, err := rt.settings.Get(r.Context(), shop)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !decodeJSON(w, r, &current) {
		return
	}
	saved, err := rt.settings.Put(r.Context(), shop, current)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (rt *Router) analyzeCatalog(w http.ResponseWriter, r *http.Request) {
	shop, ok := rt.requireShop(w, r)
	if !ok {
		return
	}
	if err := rt.analyzer.Enqueue(r.Context(), shop); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "shop": shop})
}

func (rt *Router) exportAnalysis(w http.ResponseWriter, r *http.Request) {
	shop, ok := rt.requireShop(w, r)
	if !ok {
		return
	}
	data, err := rt.analyzer.Export(r.Context(), shop)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxMIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-analysis.xlsx"`, sanitizeFilename(shop)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// requireShop resolves the shop from the Shopify header, the shop query
// parameter, or the configured single shop.
func (rt *Router) requireShop(w http.ResponseWriter, r *http.Request) (string, bool) {
	shop := strings.TrimSpace(r.Header.Get(shopHeader))
	if shop == "" {
		shop = strings.TrimSpace(r.URL.Query().Get("shop"))
	}
	if shop == "" {
		shop = strings.TrimSpace(rt.cfg.ShopifyShop)
	}
	if shop == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "shop is required"})
		return "", false
	}
	return strings.ToLower(shop), true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request_failed", "request_id", requestIDFromContext(r.Context()), "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, name)
}
