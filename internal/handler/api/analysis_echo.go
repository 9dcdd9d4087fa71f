package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/models"
	domrepo "github.com/saiuppala9/ai-forex-trader/internal/domain/repository"
	icache "github.com/saiuppala9/ai-forex-trader/internal/service/cache"
	"github.com/saiuppala9/ai-forex-trader/internal/service/consensus"
	"github.com/saiuppala9/ai-forex-trader/internal/service/metrics"
	"github.com/saiuppala9/ai-forex-trader/internal/service/ratelimit"
	"github.com/saiuppala9/ai-forex-trader/internal/usecase"
	pkgcache "github.com/saiuppala9/ai-forex-trader/pkg/cache"
	xhttp "github.com/saiuppala9/ai-forex-trader/pkg/http"
	xlogger "github.com/saiuppala9/ai-forex-trader/pkg/logger"
)

const consensusCacheTTL = 30 * time.Second

// QuoteProvider serves the last observed quote for a symbol.
type QuoteProvider interface {
	LastQuote(symbol string) (*models.Quote, bool)
}

// AnalysisEchoHandler exposes the consensus engine over Echo.
type AnalysisEchoHandler struct {
	logger    *xlogger.Logger
	consensus *usecase.ConsensusUseCase
	history   *usecase.HistoryUseCase
	quotes    QuoteProvider
	cache     icache.BytesCache
	cacheTTL  time.Duration
	rl        *ratelimit.Limiter
}

func NewAnalysisEchoHandler(
	logger *xlogger.Logger,
	consensus *usecase.ConsensusUseCase,
	history *usecase.HistoryUseCase,
	quotes QuoteProvider,
) *AnalysisEchoHandler {
	metrics.Register()
	return &AnalysisEchoHandler{
		logger:    logger,
		consensus: consensus,
		history:   history,
		quotes:    quotes,
		cacheTTL:  consensusCacheTTL,
		rl:        ratelimit.New(),
	}
}

// SetCache injects the response cache; nil disables caching.
func (h *AnalysisEchoHandler) SetCache(c icache.BytesCache) { h.cache = c }

// SetCacheTTL overrides the response cache TTL; non-positive values keep
// the default.
func (h *AnalysisEchoHandler) SetCacheTTL(d time.Duration) {
	if d > 0 {
		h.cacheTTL = d
	}
}

func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/analysis", h.Analysis)
	g.GET("/signal", h.Signal)
	g.GET("/history", h.History)
	g.GET("/quote", h.Quote)
}

// Analysis runs the multi-timeframe consensus for a symbol.
func (h *AnalysisEchoHandler) Analysis(c echo.Context) error {
	start := time.Now()
	endpoint := "analysis"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.AnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":analysis", 5, 2) {
		h.logger.Warn("analysis rate_limited", xlogger.String("remote", c.RealIP()))
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limited")
	}

	tfs, verr := parseTimeframes(req.Timeframes)
	if verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	cacheKey := pkgcache.GenerateKeyWithParams("analysis", req.Symbol, req.Timeframes)
	if b, ok := h.cacheGet(cacheKey); ok {
		return cachedJSON(c, b)
	}

	res, err := h.consensus.Analyze(c.Request().Context(), req.Symbol, tfs)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("analysis usecase error",
			xlogger.String("symbol", req.Symbol),
			xlogger.Error(err),
		)
		if errors.Is(err, consensus.ErrNoSignals) {
			return xhttp.AppErrorResponse(c,
				xhttp.NotFoundErrorf("no analyzable signals for %s", req.Symbol).WithError(err))
		}
		return xhttp.AppErrorResponse(c, err)
	}
	h.cacheSet(cacheKey, res)
	return xhttp.SuccessResponse(c, res)
}

// Signal returns the raw analyzer output for one (symbol, timeframe).
func (h *AnalysisEchoHandler) Signal(c echo.Context) error {
	start := time.Now()
	endpoint := "signal"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":signal", 10, 5) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limited")
	}
	tf := domrepo.NormalizeTimeframe(req.TF)

	cacheKey := pkgcache.GenerateKeyWithParams("signal", req.Symbol, string(tf))
	if b, ok := h.cacheGet(cacheKey); ok {
		return cachedJSON(c, b)
	}

	res, err := h.consensus.GetTimeframeSignal(c.Request().Context(), req.Symbol, tf)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("signal usecase error",
			xlogger.String("symbol", req.Symbol),
			xlogger.String("tf", string(tf)),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, err)
	}
	h.cacheSet(cacheKey, res)
	return xhttp.SuccessResponse(c, res)
}

// History returns the recent consensus records for a symbol, newest first.
func (h *AnalysisEchoHandler) History(c echo.Context) error {
	start := time.Now()
	endpoint := "history"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":history", 10, 5) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limited")
	}

	var rows []models.ConsensusRecord
	var err error
	if req.From != "" || req.To != "" {
		from := xhttp.ParseTimeDefault(req.From, time.Time{})
		to := xhttp.ParseTimeDefault(req.To, time.Time{})
		rows, err = h.history.Range(c.Request().Context(), req.Symbol, from, to, req.Limit)
	} else {
		rows, err = h.history.Recent(c.Request().Context(), req.Symbol, req.Limit)
	}
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("history usecase error",
			xlogger.String("symbol", req.Symbol),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

// Quote returns the last live quote seen for a symbol.
func (h *AnalysisEchoHandler) Quote(c echo.Context) error {
	start := time.Now()
	endpoint := "quote"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.QuoteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	q, ok := h.quotes.LastQuote(req.Symbol)
	if !ok {
		return xhttp.NotFoundResponse(c, "no quote for symbol")
	}
	return xhttp.SuccessResponse(c, q)
}

func parseTimeframes(s string) ([]domrepo.Timeframe, interface{}) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]domrepo.Timeframe, 0, len(parts))
	for _, p := range parts {
		tf := domrepo.Timeframe(strings.TrimSpace(p))
		if !domrepo.IsValidTimeframe(tf) {
			return nil, []xhttp.ValidationError{{
				Code:    "ERR_ONEOF",
				Field:   "timeframes",
				Message: "unknown timeframe: " + string(tf),
			}}
		}
		out = append(out, tf)
	}
	return out, nil
}

func (h *AnalysisEchoHandler) cacheGet(key string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	b, ok, err := h.cache.GetBytes(key)
	if err != nil {
		h.logger.Warn("cache get error", xlogger.String("key", key), xlogger.Error(err))
		return nil, false
	}
	return b, ok
}

func (h *AnalysisEchoHandler) cacheSet(key string, v interface{}) {
	if h.cache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := h.cache.SetBytes(key, b, h.cacheTTL); err != nil {
		h.logger.Warn("cache set error", xlogger.String("key", key), xlogger.Error(err))
	}
}

func cachedJSON(c echo.Context, b []byte) error {
	var data interface{}
	if err := json.Unmarshal(b, &data); err != nil {
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.SuccessResponse(c, data)
}
