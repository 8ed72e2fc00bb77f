package api

import (
	"encoding/json"
	"net/http"
	"time"

	models "SmartRental/internal/domain/models"
	icache "SmartRental/internal/service/cache"
	"SmartRental/internal/service/metrics"
	"SmartRental/internal/service/ratelimit"
	"SmartRental/internal/usecase"
	xhttp "SmartRental/pkg/http"
	xlogger "SmartRental/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Banner is the body of GET /.
const Banner = "Smart Rental API is running. All features are implemented."

// FleetEchoHandler serves the fleet API. Ledger reads are cached per snapshot
// version; scoring endpoints are rate limited per client.
type FleetEchoHandler struct {
	logger *xlogger.Logger
	svc    *usecase.FleetService
	cache  icache.BytesCache
	ttl    time.Duration
	rl     *ratelimit.Limiter
}

func NewFleetEchoHandler(logger *xlogger.Logger, svc *usecase.FleetService) *FleetEchoHandler {
	metrics.Register()
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &FleetEchoHandler{logger: logger, svc: svc, ttl: time.Minute}
}

// SetCache enables the response cache for ledger GET endpoints.
func (h *FleetEchoHandler) SetCache(c icache.BytesCache, ttl time.Duration) {
	h.cache = c
	if ttl > 0 {
		h.ttl = ttl
	}
}

func (h *FleetEchoHandler) SetLimiter(rl *ratelimit.Limiter) { h.rl = rl }

func (h *FleetEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Home)
	e.GET("/health", h.Health)

	e.GET("/asset_status", h.AssetStatus)
	e.GET("/asset_history/:equipment_id", h.AssetHistory)
	e.GET("/underutilized_assets", h.Underutilized)
	e.GET("/returns_due_soon", h.ReturnsDue)

	e.POST("/predict_breakdown", h.PredictBreakdown)
	e.POST("/predict_price", h.PredictPrice)
	e.POST("/forecast_demand", h.ForecastDemand)
	e.POST("/detect_anomaly", h.DetectAnomaly)
}

func (h *FleetEchoHandler) Home(c echo.Context) error {
	return c.String(http.StatusOK, Banner)
}

func (h *FleetEchoHandler) Health(c echo.Context) error {
	return xhttp.JSONResponse(c, toHealthDTO(h.svc.Snapshot()))
}

func (h *FleetEchoHandler) AssetStatus(c echo.Context) error {
	const endpoint = "asset_status"
	defer observe(endpoint, time.Now())

	req := &models.AssetStatusRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, endpoint, verr)
	}
	return h.cached(c, endpoint, func() (interface{}, error) {
		fs, err := h.svc.AssetStatus(models.StatusFilter{
			State:    models.AssetState(req.Status),
			Location: req.Location,
			Search:   req.Search,
		})
		if err != nil {
			return nil, err
		}
		return toFleetStatusDTO(fs), nil
	})
}

func (h *FleetEchoHandler) AssetHistory(c echo.Context) error {
	const endpoint = "asset_history"
	defer observe(endpoint, time.Now())

	req := &models.AssetHistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, endpoint, verr)
	}
	return h.cached(c, endpoint, func() (interface{}, error) {
		hist, err := h.svc.AssetHistory(req.EquipmentID)
		if err != nil {
			return nil, err
		}
		return toAssetHistoryDTO(hist), nil
	})
}

func (h *FleetEchoHandler) Underutilized(c echo.Context) error {
	const endpoint = "underutilized_assets"
	defer observe(endpoint, time.Now())

	req := &models.UnderutilizedRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, endpoint, verr)
	}
	threshold, err := usecase.ParseThreshold(req.Threshold)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return h.cached(c, endpoint, func() (interface{}, error) {
		assets, err := h.svc.Underutilized(threshold)
		if err != nil {
			return nil, err
		}
		return toUnderutilizedDTO(threshold, assets), nil
	})
}

func (h *FleetEchoHandler) ReturnsDue(c echo.Context) error {
	const endpoint = "returns_due_soon"
	defer observe(endpoint, time.Now())

	req := &models.ReturnsDueRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, endpoint, verr)
	}
	days, err := usecase.ParseDays(req.DaysOut)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return h.cached(c, endpoint, func() (interface{}, error) {
		w, err := h.svc.ReturnsDue(days)
		if err != nil {
			return nil, err
		}
		return toReturnWindowDTO(w), nil
	})
}

func (h *FleetEchoHandler) PredictBreakdown(c echo.Context) error {
	const endpoint = "predict_breakdown"
	defer observe(endpoint, time.Now())

	if !h.allow(c, endpoint) {
		return h.rateLimited(c, endpoint)
	}
	body, verr := xhttp.ReadBody(c)
	if verr != nil {
		return h.badRequest(c, endpoint, verr)
	}
	risk, err := h.svc.PredictBreakdown(c.Request().Context(), body)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.JSONResponse(c, toBreakdownDTO(risk))
}

func (h *FleetEchoHandler) PredictPrice(c echo.Context) error {
	const endpoint = "predict_price"
	defer observe(endpoint, time.Now())

	if !h.allow(c, endpoint) {
		return h.rateLimited(c, endpoint)
	}
	body, verr := xhttp.ReadBody(c)
	if verr != nil {
		return h.badRequest(c, endpoint, verr)
	}
	price, err := h.svc.PredictPrice(c.Request().Context(), body)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.JSONResponse(c, priceDTO{PredictedPriceUSD: price})
}

func (h *FleetEchoHandler) ForecastDemand(c echo.Context) error {
	const endpoint = "forecast_demand"
	defer observe(endpoint, time.Now())

	if !h.allow(c, endpoint) {
		return h.rateLimited(c, endpoint)
	}
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, endpoint, verr)
	}
	fc, err := h.svc.ForecastDemand(c.Request().Context(), req.EquipmentType, *req.Periods)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.JSONResponse(c, toForecastDTO(fc))
}

func (h *FleetEchoHandler) DetectAnomaly(c echo.Context) error {
	const endpoint = "detect_anomaly"
	defer observe(endpoint, time.Now())

	if !h.allow(c, endpoint) {
		return h.rateLimited(c, endpoint)
	}
	body, verr := xhttp.ReadBody(c)
	if verr != nil {
		return h.badRequest(c, endpoint, verr)
	}
	res, err := h.svc.DetectAnomaly(c.Request().Context(), body)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.JSONResponse(c, anomalyDTO{
		EquipmentType: res.EquipmentType,
		IsAnomaly:     res.IsAnomaly,
		ResultText:    res.Text,
	})
}

// cached serves the endpoint from the response cache when possible. Keys carry
// the snapshot version, so a reload never serves stale documents.
func (h *FleetEchoHandler) cached(c echo.Context, endpoint string, build func() (interface{}, error)) error {
	if h.cache == nil {
		res, err := build()
		if err != nil {
			return h.fail(c, endpoint, err)
		}
		return xhttp.JSONResponse(c, res)
	}

	ctx := c.Request().Context()
	key := icache.Key(h.svc.Snapshot().Version, c.Request().URL.Path, c.QueryString())
	if b, ok, err := h.cache.GetBytes(ctx, key); err != nil {
		h.logger.Warn("fleet cache_get_error", xlogger.String("endpoint", endpoint), xlogger.Error(err))
	} else if ok {
		metrics.CacheLookups.WithLabelValues(endpoint, "hit").Inc()
		return xhttp.BlobResponse(c, b)
	}
	metrics.CacheLookups.WithLabelValues(endpoint, "miss").Inc()

	res, err := build()
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	b, err := json.Marshal(res)
	if err != nil {
		h.logger.Error("fleet marshal_error", xlogger.String("endpoint", endpoint), xlogger.Error(err))
		return h.fail(c, endpoint, err)
	}
	if err := h.cache.SetBytes(ctx, key, b, h.ttl); err != nil {
		h.logger.Warn("fleet cache_set_error", xlogger.String("endpoint", endpoint), xlogger.Error(err))
	}
	return xhttp.BlobResponse(c, b)
}

func (h *FleetEchoHandler) allow(c echo.Context, endpoint string) bool {
	if h.rl == nil {
		return true
	}
	return h.rl.Allow(c.RealIP() + ":" + endpoint)
}

func (h *FleetEchoHandler) rateLimited(c echo.Context, endpoint string) error {
	metrics.RateLimited.WithLabelValues(endpoint).Inc()
	h.logger.Warn("fleet rate_limited", xlogger.String("endpoint", endpoint), xlogger.String("remote", c.RealIP()))
	return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limited"))
}

func (h *FleetEchoHandler) badRequest(c echo.Context, endpoint string, verr []xhttp.ValidationError) error {
	metrics.EndpointErrors.WithLabelValues(endpoint, "invalid_input").Inc()
	return xhttp.BadRequestResponse(c, verr)
}

func (h *FleetEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	kind := usecase.ErrorKind(err)
	metrics.EndpointErrors.WithLabelValues(endpoint, kind).Inc()
	if kind == "internal" {
		h.logger.Error("fleet request failed", xlogger.String("endpoint", endpoint), xlogger.Error(err))
	} else {
		h.logger.Debug("fleet request rejected", xlogger.String("endpoint", endpoint), xlogger.String("kind", kind), xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, toAppError(err))
}

func observe(endpoint string, start time.Time) {
	metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
