package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/giftworks/giftid"
)

// unhealthyClockBackwardErrThreshold is how many unrecoverable clock
// regressions a generator can accumulate before /health starts
// reporting 503 instead of 200. A handful of recovered regressions are
// normal under NTP correction; a string of unrecoverable ones means the
// host clock is actually broken.
const unhealthyClockBackwardErrThreshold = 10

// Server is the thin HTTP collaborator in front of a Generator. It adds
// no coordination or state beyond what Generator and the optional
// Ledger/Registry already provide.
type Server struct {
	gen    *giftid.Generator
	ledger giftid.Ledger
	log    zerolog.Logger
	mux    *http.ServeMux
}

// NewServer builds a Server. ledger may be giftid.NoopLedger{}.
func NewServer(gen *giftid.Generator, ledger giftid.Ledger, log zerolog.Logger) *Server {
	s := &Server{gen: gen, ledger: ledger, log: log}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/gift-id/generate", s.handleGenerate)
	mux.HandleFunc("GET /api/v1/gift-id/{id}/decode", s.handleDecode)
	mux.HandleFunc("GET /api/v1/gift-id/{id}/encodings", s.handleEncodings)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	s.mux = mux
	return s
}

// Handler returns the wired http.Handler, with correlation-ID
// middleware applied.
func (s *Server) Handler() http.Handler {
	return withCorrelationID(s.mux)
}

type generateRequest struct {
	GiftClass string `json:"gift_class"`
}

type generateResponse struct {
	ID          giftid.ID `json:"id"`
	Decimal     string    `json:"decimal"`
	Hex         string    `json:"hex"`
	Base62      string    `json:"base62"`
	WorkshopID  uint16    `json:"workshop_id"`
	TimestampMs int64     `json:"timestamp_ms"`
	Sequence    uint16    `json:"sequence"`
	GiftClass   string    `json:"gift_class"`
	GeneratedAt time.Time `json:"generated_at"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}
	}

	giftClass, err := giftid.ParseGiftClass(req.GiftClass)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.gen.GenerateWithContext(r.Context(), giftClass)
	if err != nil {
		s.handleGenerationError(w, r, err)
		return
	}

	if s.ledger != nil {
		if err := s.ledger.Record(r.Context(), id, s.gen.WorkshopID(), giftClass); err != nil {
			s.log.Warn().Str("correlation_id", correlationID(r.Context())).Err(err).Msg("ledger record failed")
		}
	}

	components, err := id.Components()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		ID:          id,
		Decimal:     id.String(),
		Hex:         id.Hex(),
		Base62:      id.Base62(),
		WorkshopID:  s.gen.WorkshopID(),
		TimestampMs: components.TimestampMs,
		Sequence:    components.Sequence,
		GiftClass:   giftClass.String(),
		GeneratedAt: time.UnixMilli(components.AbsoluteMillis()).UTC(),
	})
}

func (s *Server) handleGenerationError(w http.ResponseWriter, r *http.Request, err error) {
	var clockErr *giftid.ClockRegressionError
	switch {
	case errors.As(err, &clockErr):
		s.log.Error().Str("correlation_id", correlationID(r.Context())).Err(err).Msg("clock regression")
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, giftid.ErrClockBeforeEpoch), errors.Is(err, giftid.ErrEpochOverflow):
		s.log.Error().Str("correlation_id", correlationID(r.Context())).Err(err).Msg("clock fault")
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, giftid.ErrContextCanceled):
		writeError(w, http.StatusRequestTimeout, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

type decodeResponse struct {
	TimestampMs int64     `json:"timestamp_ms"`
	GeneratedAt time.Time `json:"generated_at"`
	WorkshopID  uint16    `json:"workshop_id"`
	Sequence    uint16    `json:"sequence"`
	GiftClass   string    `json:"gift_class"`
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	id, err := giftid.ParseID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id: "+err.Error())
		return
	}

	components, err := id.Components()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, decodeResponse{
		TimestampMs: components.TimestampMs,
		GeneratedAt: time.UnixMilli(components.AbsoluteMillis()).UTC(),
		WorkshopID:  components.WorkshopID,
		Sequence:    components.Sequence,
		GiftClass:   components.GiftClass.String(),
	})
}

type encodingsResponse struct {
	Decimal string `json:"decimal"`
	Hex     string `json:"hex"`
	Base32  string `json:"base32"`
	Base58  string `json:"base58"`
	Base62  string `json:"base62"`
}

func (s *Server) handleEncodings(w http.ResponseWriter, r *http.Request) {
	id, err := giftid.ParseID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, encodingsResponse{
		Decimal: id.String(),
		Hex:     id.Hex(),
		Base32:  id.Base32(),
		Base58:  id.Base58(),
		Base62:  id.Base62(),
	})
}

type healthResponse struct {
	Status     string `json:"status"`
	WorkshopID uint16 `json:"workshop_id"`
	Generated  int64  `json:"generated"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	metrics := s.gen.Metrics()

	if metrics.ClockBackwardErr > unhealthyClockBackwardErrThreshold {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status:     "unhealthy: repeated unrecoverable clock regressions",
			WorkshopID: s.gen.WorkshopID(),
			Generated:  metrics.Generated,
		})
		return
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		WorkshopID: s.gen.WorkshopID(),
		Generated:  metrics.Generated,
	})
}

// handleMetrics exposes generator counters in Prometheus text exposition
// format, hand-written the way the teacher's own example does it rather
// than pulling in a dependency solely for the counter types this repo
// does not otherwise need (see DESIGN.md).
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m := s.gen.Metrics()
	workshopID := s.gen.WorkshopID()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	fmt.Fprintf(w, "# HELP giftid_generated_total Total number of gift identifiers generated\n")
	fmt.Fprintf(w, "# TYPE giftid_generated_total counter\n")
	fmt.Fprintf(w, "giftid_generated_total{workshop=\"%d\"} %d\n", workshopID, m.Generated)

	fmt.Fprintf(w, "# HELP giftid_clock_backward_total Backward clock jumps detected, recovered or not\n")
	fmt.Fprintf(w, "# TYPE giftid_clock_backward_total counter\n")
	fmt.Fprintf(w, "giftid_clock_backward_total{workshop=\"%d\"} %d\n", workshopID, m.ClockBackward)

	fmt.Fprintf(w, "# HELP giftid_clock_backward_errors_total Unrecoverable clock regressions\n")
	fmt.Fprintf(w, "# TYPE giftid_clock_backward_errors_total counter\n")
	fmt.Fprintf(w, "giftid_clock_backward_errors_total{workshop=\"%d\"} %d\n", workshopID, m.ClockBackwardErr)

	fmt.Fprintf(w, "# HELP giftid_sequence_overflow_total Per-millisecond sequence exhaustion events\n")
	fmt.Fprintf(w, "# TYPE giftid_sequence_overflow_total counter\n")
	fmt.Fprintf(w, "giftid_sequence_overflow_total{workshop=\"%d\"} %d\n", workshopID, m.SequenceOverflow)

	fmt.Fprintf(w, "# HELP giftid_wait_time_microseconds_total Total time spent waiting on the clock\n")
	fmt.Fprintf(w, "# TYPE giftid_wait_time_microseconds_total counter\n")
	fmt.Fprintf(w, "giftid_wait_time_microseconds_total{workshop=\"%d\"} %d\n", workshopID, m.WaitTimeUs)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
