package port

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"

	"github.com/aelexs/timegate/internal/domain"
	"github.com/aelexs/timegate/internal/errmap"
	"github.com/aelexs/timegate/internal/observability"
	"github.com/aelexs/timegate/pkg/protocol"
)

// HTTPHandler serves the JSON time API.
type HTTPHandler struct {
	svc  timeService
	spec []byte
}

// NewHTTPHandler creates an HTTPHandler. spec is the OpenAPI document served
// at /openapi.json; nil disables that route.
func NewHTTPHandler(svc timeService, spec []byte) *HTTPHandler {
	return &HTTPHandler{svc: svc, spec: spec}
}

// Register adds the HTTP routes to mux.
func (h *HTTPHandler) Register(mux *runtime.ServeMux) error {
	if err := mux.HandlePath(http.MethodGet, "/v1/now", h.now); err != nil {
		return fmt.Errorf("register /v1/now: %w", err)
	}
	if h.spec != nil {
		if err := mux.HandlePath(http.MethodGet, "/openapi.json", h.openAPI); err != nil {
			return fmt.Errorf("register /openapi.json: %w", err)
		}
	}
	return nil
}

// now handles GET /v1/now. Without a unit query parameter every reading is
// returned; with unit=ns|ms|s only that one.
func (h *HTTPHandler) now(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	ctx := r.Context()

	unit := domain.Unit(r.URL.Query().Get("unit"))
	if unit != "" && !validUnit(unit) {
		writeError(w, r, fmt.Errorf("%w: unit %q", domain.ErrInvalidInput, unit))
		return
	}

	ts, err := h.svc.Now(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if unit == "" {
		writeJSON(w, r, http.StatusOK, protocol.NewReading(ts))
		return
	}

	value, err := ts.Reading(unit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, protocol.UnitReading{Unit: string(unit), Value: value})
}

func (h *HTTPHandler) openAPI(w http.ResponseWriter, _ *http.Request, _ map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(h.spec)
}

func validUnit(u domain.Unit) bool {
	switch u {
	case domain.UnitNano, domain.UnitMilli, domain.UnitSec:
		return true
	}
	return false
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	httpErr := errmap.ToHTTPError(err)
	writeJSON(w, r, httpErr.StatusCode, protocol.Error{Code: httpErr.Code, Message: httpErr.Message})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		observability.LoggerFromContext(r.Context()).WarnContext(r.Context(), "write response failed", slog.String("error", err.Error()))
	}
}
