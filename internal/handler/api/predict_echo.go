package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	models "NewsSignal/internal/domain/models"
	domrepo "NewsSignal/internal/domain/repository"
	dsvc "NewsSignal/internal/domain/service"
	"NewsSignal/internal/service/cache"
	apimetrics "NewsSignal/internal/service/metrics"
	"NewsSignal/internal/service/ratelimit"
	xhttp "NewsSignal/pkg/http"
	xlogger "NewsSignal/pkg/logger"
	"NewsSignal/pkg/util"

	"github.com/labstack/echo/v4"
)

// SourceAPI tags predictions requested over HTTP.
const SourceAPI = "api"

// PredictResponse is the body of /api/predict.
type PredictResponse struct {
	Headline string       `json:"headline"`
	Label    models.Label `json:"label"`
	Cached   bool         `json:"cached"`
}

// PredictHandler serves the prediction API over Echo.
type PredictHandler struct {
	logger    *xlogger.Logger
	predictor dsvc.Predictor
	lang      dsvc.LanguageDetector
	metrics   domrepo.Metrics
	store     domrepo.PredictionStore
	cache     cache.BytesCache
	cacheTTL  time.Duration
	limiter   *ratelimit.Limiter
	ready     func(ctx context.Context) error
}

// PredictOption configures optional collaborators.
type PredictOption func(*PredictHandler)

// WithCache caches labels keyed by the stemmed text.
func WithCache(c cache.BytesCache, ttl time.Duration) PredictOption {
	return func(h *PredictHandler) {
		h.cache = c
		h.cacheTTL = ttl
	}
}

// WithRateLimiter applies a per-client token bucket to /api/predict and /api/analyze.
func WithRateLimiter(l *ratelimit.Limiter) PredictOption {
	return func(h *PredictHandler) { h.limiter = l }
}

// WithStore enables /api/predictions/recent.
func WithStore(s domrepo.PredictionStore) PredictOption {
	return func(h *PredictHandler) { h.store = s }
}

// WithReadiness adds a check reported by /healthz.
func WithReadiness(fn func(ctx context.Context) error) PredictOption {
	return func(h *PredictHandler) { h.ready = fn }
}

func NewPredictHandler(logger *xlogger.Logger, predictor dsvc.Predictor, lang dsvc.LanguageDetector, metrics domrepo.Metrics, opts ...PredictOption) *PredictHandler {
	h := &PredictHandler{logger: logger, predictor: predictor, lang: lang, metrics: metrics}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *PredictHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/predict", h.Predict, h.rateLimit)
	g.POST("/predict", h.Predict, h.rateLimit)
	g.POST("/analyze", h.Analyze, h.rateLimit)
	g.GET("/model", h.Model)
	g.GET("/predictions/recent", h.Recent)
}

func (h *PredictHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.limiter != nil && !h.limiter.Allow(c.RealIP()) {
			apimetrics.APIErrors.WithLabelValues(c.Path()).Inc()
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded"))
		}
		return next(c)
	}
}

// Predict labels the headline from the query string or JSON body.
// An empty headline is valid and scored on the model bias alone.
func (h *PredictHandler) Predict(c echo.Context) error {
	start := time.Now()
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		apimetrics.APIErrors.WithLabelValues("predict").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}
	ctx := c.Request().Context()

	text := h.predictor.Preprocess(req.Headline)
	key := h.cacheKey(text)
	label, cached := h.cachedLabel(ctx, key)
	if !cached {
		label = h.predictor.PredictText(text)
		h.metrics.RecordPrediction(SourceAPI, label)
		if h.cache != nil {
			if err := h.cache.SetBytes(ctx, key, []byte(label.String()), h.cacheTTL); err != nil {
				h.logger.Warn("prediction cache write failed", xlogger.Error(err))
			}
		}
	}
	apimetrics.APILatency.WithLabelValues("predict").Observe(time.Since(start).Seconds())
	h.logger.Debug("prediction served",
		xlogger.String("label", label.String()),
		xlogger.Bool("cached", cached),
		xlogger.Duration("took", time.Since(start)))
	return xhttp.SuccessResponse(c, PredictResponse{Headline: req.Headline, Label: label, Cached: cached})
}

// cacheKey scopes cached labels to the loaded model so a shared cache never
// serves labels from other artifacts.
func (h *PredictHandler) cacheKey(text string) string {
	return "predict:" + h.predictor.Info().Fingerprint + ":" + text
}

func (h *PredictHandler) cachedLabel(ctx context.Context, key string) (models.Label, bool) {
	if h.cache == nil {
		return 0, false
	}
	b, ok, err := h.cache.GetBytes(ctx, key)
	if err != nil {
		h.logger.Warn("prediction cache read failed", xlogger.Error(err))
		apimetrics.CacheLookups.WithLabelValues("error").Inc()
		return 0, false
	}
	if !ok {
		apimetrics.CacheLookups.WithLabelValues("miss").Inc()
		return 0, false
	}
	label, err := models.ParseLabel(string(b))
	if err != nil {
		apimetrics.CacheLookups.WithLabelValues("error").Inc()
		return 0, false
	}
	apimetrics.CacheLookups.WithLabelValues("hit").Inc()
	return label, true
}

// Analyze returns every intermediate of the pipeline plus the detected language.
func (h *PredictHandler) Analyze(c echo.Context) error {
	start := time.Now()
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		apimetrics.APIErrors.WithLabelValues("analyze").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	res := h.predictor.Analyze(req.Headline)
	if h.lang != nil {
		res.Language = h.lang.Detect(req.Headline)
	}
	h.metrics.RecordPrediction(SourceAPI, res.Label)
	apimetrics.APILatency.WithLabelValues("analyze").Observe(time.Since(start).Seconds())
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictHandler) Model(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=60")
	return xhttp.SuccessResponse(c, h.predictor.Info())
}

func (h *PredictHandler) Recent(c echo.Context) error {
	if h.store == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("prediction store is not configured"))
	}
	req := &models.RecentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	from, to, err := util.ParseRange(req.From, req.To)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	f := domrepo.RecordFilter{Source: req.Source, From: from, To: to, Limit: req.Limit}
	if req.Label != "" {
		label, err := models.ParseLabel(req.Label)
		if err != nil {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
		}
		f.Label = &label
	}

	rows, err := h.store.Query(c.Request().Context(), f)
	if err != nil {
		h.logger.Error("recent predictions query error", xlogger.Error(err))
		apimetrics.APIErrors.WithLabelValues("recent").Inc()
		return xhttp.AppErrorResponse(c, xhttp.InternalError("query predictions").WithError(err))
	}
	if rows == nil {
		rows = []*models.PredictionRecord{}
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *PredictHandler) Health(c echo.Context) error {
	if h.ready != nil {
		if err := h.ready(c.Request().Context()); err != nil {
			if errors.Is(err, context.Canceled) {
				return c.NoContent(http.StatusServiceUnavailable)
			}
			return xhttp.DataResponse(c, http.StatusServiceUnavailable, err.Error())
		}
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

var _ xhttp.Handler = (*PredictHandler)(nil)
