package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"pajak-engine/internal/engine"
	ierr "pajak-engine/internal/errors"
	"pajak-engine/internal/export"
	"pajak-engine/internal/logger"
	"pajak-engine/internal/metrics"
	"pajak-engine/internal/model"
	"pajak-engine/internal/receipt"
)

type Handler struct {
	engine   *engine.Engine
	store    *receipt.Store
	exporter *export.Exporter
	metrics  *metrics.Metrics
	log      *logger.Logger
	validate *validator.Validate

	metricsHandler fasthttp.RequestHandler
}

func New(e *engine.Engine, store *receipt.Store, exporter *export.Exporter, m *metrics.Metrics, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	h := &Handler{
		engine:   e,
		store:    store,
		exporter: exporter,
		metrics:  m,
		log:      log,
		validate: validator.New(),
	}
	if m != nil {
		h.metricsHandler = fasthttpadaptor.NewFastHTTPHandler(m.HTTPHandler())
	}
	return h
}

// Handle is the fasthttp entry point.
func (h *Handler) Handle(ctx *fasthttp.RequestCtx) {
	start := time.Now()
	route := h.route(ctx)
	h.metrics.ObserveRequest(
		string(ctx.Method()),
		route,
		strconv.Itoa(ctx.Response.StatusCode()),
		time.Since(start).Seconds(),
	)
}

// route dispatches the request and returns the matched route template.
func (h *Handler) route(ctx *fasthttp.RequestCtx) string {
	parts := strings.Split(strings.Trim(string(ctx.Path()), "/"), "/")
	method := string(ctx.Method())

	switch {
	case match(parts, "healthz"):
		h.only(ctx, method, fasthttp.MethodGet, h.health)
		return "/healthz"
	case match(parts, "metrics"):
		h.only(ctx, method, fasthttp.MethodGet, h.serveMetrics)
		return "/metrics"
	case match(parts, "v1", "calculate"):
		h.only(ctx, method, fasthttp.MethodPost, h.calculate)
		return "/v1/calculate"
	case match(parts, "v1", "receipts"):
		switch method {
		case fasthttp.MethodPost:
			h.createReceipt(ctx)
		case fasthttp.MethodGet:
			h.listReceipts(ctx)
		default:
			h.methodNotAllowed(ctx)
		}
		return "/v1/receipts"
	case match(parts, "v1", "receipts", "*"):
		switch method {
		case fasthttp.MethodGet:
			h.getReceipt(ctx, parts[2])
		case fasthttp.MethodDelete:
			h.deleteReceipt(ctx, parts[2])
		default:
			h.methodNotAllowed(ctx)
		}
		return "/v1/receipts/{id}"
	case match(parts, "v1", "receipts", "*", "export"):
		h.only(ctx, method, fasthttp.MethodGet, func(ctx *fasthttp.RequestCtx) { h.exportReceipt(ctx, parts[2]) })
		return "/v1/receipts/{id}/export"
	case match(parts, "v1", "receipts", "*", "diff", "*"):
		h.only(ctx, method, fasthttp.MethodGet, func(ctx *fasthttp.RequestCtx) { h.diffReceipts(ctx, parts[2], parts[4]) })
		return "/v1/receipts/{a}/diff/{b}"
	case match(parts, "v1", "batches"):
		h.only(ctx, method, fasthttp.MethodPost, h.createBatch)
		return "/v1/batches"
	case match(parts, "v1", "batches", "*"):
		h.only(ctx, method, fasthttp.MethodGet, func(ctx *fasthttp.RequestCtx) { h.getBatch(ctx, parts[2]) })
		return "/v1/batches/{id}"
	case match(parts, "v1", "batches", "*", "export"):
		h.only(ctx, method, fasthttp.MethodGet, func(ctx *fasthttp.RequestCtx) { h.exportBatch(ctx, parts[2]) })
		return "/v1/batches/{id}/export"
	}

	h.writeError(ctx, ierr.Newf(ierr.ErrNotFound, "handler.route", "no route for %s %s", method, ctx.Path()))
	return "unmatched"
}

// match compares path segments; "*" matches any non-empty segment.
func match(parts []string, pattern ...string) bool {
	if len(parts) != len(pattern) {
		return false
	}
	for i, p := range pattern {
		if p == "*" {
			if parts[i] == "" {
				return false
			}
			continue
		}
		if parts[i] != p {
			return false
		}
	}
	return true
}

func (h *Handler) only(ctx *fasthttp.RequestCtx, method, allowed string, next fasthttp.RequestHandler) {
	if method != allowed {
		h.methodNotAllowed(ctx)
		return
	}
	next(ctx)
}

func (h *Handler) methodNotAllowed(ctx *fasthttp.RequestCtx) {
	h.writeStatus(ctx, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
}

func (h *Handler) health(ctx *fasthttp.RequestCtx) {
	h.writeJSON(ctx, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) serveMetrics(ctx *fasthttp.RequestCtx) {
	if h.metricsHandler == nil {
		h.writeError(ctx, ierr.Newf(ierr.ErrNotFound, "handler.metrics", "metrics are disabled"))
		return
	}
	h.metricsHandler(ctx)
}

func (h *Handler) calculate(ctx *fasthttp.RequestCtx) {
	var req model.CalculationRequest
	if err := h.decode(ctx, &req); err != nil {
		h.writeError(ctx, err)
		return
	}

	resp := h.engine.Process(ctx, &req)
	h.writeJSON(ctx, http.StatusOK, resp)
}

// decode parses and validates a JSON request body.
func (h *Handler) decode(ctx *fasthttp.RequestCtx, dst any) error {
	if err := json.Unmarshal(ctx.PostBody(), dst); err != nil {
		return ierr.Wrap(err, ierr.ErrValidation, "handler.decode", "Invalid request body: "+err.Error())
	}
	if err := h.validate.Struct(dst); err != nil {
		return ierr.Wrap(err, ierr.ErrValidation, "handler.decode", err.Error())
	}
	return nil
}

func (h *Handler) writeJSON(ctx *fasthttp.RequestCtx, status int, body any) {
	raw, err := json.Marshal(body)
	if err != nil {
		h.writeError(ctx, ierr.Wrap(err, ierr.ErrSystem, "handler.writeJSON", "could not encode response"))
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(raw)
}

func (h *Handler) writeError(ctx *fasthttp.RequestCtx, err error) {
	status := ierr.HTTPStatusFromErr(err)
	if status >= http.StatusInternalServerError {
		h.log.Errorw("request failed", "method", string(ctx.Method()), "path", string(ctx.Path()), "error", err)
	} else {
		h.log.Debugw("request rejected", "method", string(ctx.Method()), "path", string(ctx.Path()), "error", err)
	}
	h.writeStatus(ctx, status, ierr.Code(err), ierr.Message(err))
}

func (h *Handler) writeStatus(ctx *fasthttp.RequestCtx, status int, code, message string) {
	raw, _ := json.Marshal(model.ErrorResponse{
		Status:  status,
		Code:    code,
		Message: message,
	})
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(raw)
}
