// Package api exposes the ops HTTP surface: health, the live flight board
// and on-demand PIREP validation. The chat adapter and staff tools consume
// it; verdicts returned here are advisory and mutate nothing.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"qrv_ops/internal/store"
	"qrv_ops/internal/tracker"
	"qrv_ops/internal/validate"
)

// Board supplies the current tracked flights.
type Board interface {
	Board() []tracker.TrackedFlight
}

// PIREPReader fetches stored reports.
type PIREPReader interface {
	PIREPByID(ctx context.Context, id int64) (*store.PIREP, error)
}

// Validator runs the validation engine.
type Validator interface {
	Validate(ctx context.Context, p store.PIREP) validate.Verdict
}

// Config holds server settings.
type Config struct {
	Port        int
	AuthEnabled bool
	APIKeys     []string
}

// Server is the ops API server.
type Server struct {
	board       Board
	pireps      PIREPReader
	validator   Validator
	port        int
	authEnabled bool
	apiKeys     map[string]bool
}

// NewServer wires the ops API.
func NewServer(board Board, pireps PIREPReader, validator Validator, cfg Config) *Server {
	keys := make(map[string]bool)
	for _, k := range cfg.APIKeys {
		if k != "" {
			keys[k] = true
		}
	}
	return &Server{
		board:       board,
		pireps:      pireps,
		validator:   validator,
		port:        cfg.Port,
		authEnabled: cfg.AuthEnabled,
		apiKeys:     keys,
	}
}

// Router returns the configured chi router.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			if s.authEnabled {
				r.Use(s.authMiddleware)
			}
			r.Get("/flights", s.handleFlights)
			r.Post("/pireps/{id}/validate", s.handleValidate)
		})
	})
	return r
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := ":" + strconv.Itoa(s.port)
	return http.ListenAndServe(addr, s.Router())
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			auth := r.Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				apiKey = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if apiKey == "" {
			apiKey = r.URL.Query().Get("api_key")
		}
		if apiKey == "" {
			writeError(w, http.StatusUnauthorized, "API key required")
			return
		}
		if !s.apiKeys[apiKey] {
			writeError(w, http.StatusForbidden, "Invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// FlightBoardEntry is the public shape of one tracked flight.
type FlightBoardEntry struct {
	FlightNumber string  `json:"flight_number"`
	Callsign     string  `json:"callsign"`
	SimUsername  string  `json:"sim_username"`
	Aircraft     string  `json:"aircraft"`
	Departure    string  `json:"departure"`
	Arrival      string  `json:"arrival"`
	DistanceNM   float64 `json:"distance_nm"`
	Duration     string  `json:"duration"`
}

func (s *Server) handleFlights(w http.ResponseWriter, r *http.Request) {
	flights := s.board.Board()
	out := make([]FlightBoardEntry, 0, len(flights))
	for _, tf := range flights {
		out = append(out, FlightBoardEntry{
			FlightNumber: tf.FlightNumber,
			Callsign:     tf.Callsign,
			SimUsername:  tf.SimUsername,
			Aircraft:     tf.AircraftName,
			Departure:    tf.Departure,
			Arrival:      tf.Arrival,
			DistanceNM:   tf.DistanceNM,
			Duration:     tf.Duration,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pirep id")
		return
	}

	pirep, err := s.pireps.PIREPByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if pirep == nil {
		writeError(w, http.StatusNotFound, "no such pirep")
		return
	}

	verdict := s.validator.Validate(r.Context(), *pirep)
	writeJSON(w, http.StatusOK, verdict)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
