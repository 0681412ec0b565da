package productionplan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/kilianp07/powerplan/core/events"
	"github.com/kilianp07/powerplan/core/logger"
	"github.com/kilianp07/powerplan/core/planner"
)

const (
	// HeaderUnsatisfiedLoad carries the remaining load of the plan.
	HeaderUnsatisfiedLoad = "unsatisfied-load"
	// HeaderPlanID carries the identifier of the plan.
	HeaderPlanID = "X-Plan-ID"

	DefaultMaxBodyBytes = 1 << 20
)

// Planner computes plans and counts refused requests.
type Planner interface {
	Plan(ctx context.Context, req planner.Request) (planner.Outcome, error)
	Reject(reason string, err error)
}

// Options configures a Handler.
type Options struct {
	// Permissive disables the range checks on numbers.
	Permissive bool
	// CacheSize is the number of responses kept; 0 disables the cache.
	CacheSize    int
	MaxBodyBytes int64
	// Events receives cache lookups. Optional.
	Events events.Publisher
}

// Handler serves POST /productionplan.
type Handler struct {
	planner  Planner
	logger   logger.Logger
	strict   bool
	maxBytes int64
	cache    *responseCache
	events   events.Publisher
}

// NewHandler returns the production plan handler.
func NewHandler(p Planner, log logger.Logger, opts Options) (*Handler, error) {
	if p == nil {
		return nil, errors.New("productionplan: nil planner")
	}
	cache, err := newResponseCache(opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("response cache: %w", err)
	}
	h := &Handler{
		planner:  p,
		logger:   log,
		strict:   !opts.Permissive,
		maxBytes: opts.MaxBodyBytes,
		cache:    cache,
		events:   opts.Events,
	}
	if h.maxBytes <= 0 {
		h.maxBytes = DefaultMaxBodyBytes
	}
	if h.events == nil {
		h.events = events.NopPublisher{}
	}
	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	payload, err := DecodePayload(http.MaxBytesReader(w, r.Body, h.maxBytes))
	if err != nil {
		h.reject(w, "decode", err)
		return
	}
	if err := payload.Validate(h.strict); err != nil {
		h.reject(w, "validation", err)
		return
	}

	key, keyErr := json.Marshal(payload)
	if h.cache != nil && keyErr == nil {
		hit, ok := h.cache.get(string(key))
		h.events.Publish(events.CacheLookup{Hit: ok})
		if ok {
			h.write(w, hit)
			return
		}
	}

	req, err := payload.Request(RequestIDFrom(r.Context()))
	if err != nil {
		h.reject(w, "validation", err)
		return
	}
	out, err := h.planner.Plan(r.Context(), req)
	if err != nil {
		h.planner.Reject("canceled", err)
		http.Error(w, "request canceled", http.StatusServiceUnavailable)
		return
	}

	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(NewResponse(out.Result)); err != nil {
		h.logger.Errorf("encode plan %s: %v", out.PlanID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	resp := cachedPlan{body: body.Bytes(), remaining: out.Result.RemainingLoad.MW.String(), planID: out.PlanID}
	if keyErr == nil {
		h.cache.add(string(key), resp)
	}
	h.write(w, resp)
}

func (h *Handler) write(w http.ResponseWriter, p cachedPlan) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(HeaderUnsatisfiedLoad, p.remaining)
	w.Header().Set(HeaderPlanID, p.planID)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(p.body); err != nil {
		h.logger.Warnf("write plan %s: %v", p.planID, err)
	}
}

func (h *Handler) reject(w http.ResponseWriter, reason string, err error) {
	h.planner.Reject(reason, err)
	code := http.StatusBadRequest
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		code = http.StatusRequestEntityTooLarge
	}
	h.logger.Debugf("rejected production plan (%s): %v", reason, err)
	http.Error(w, err.Error(), code)
}

// Health serves GET /healthz.
func Health() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})
}
