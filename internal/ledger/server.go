package ledger

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/ecolife-shop/internal/infrastructure/co2api"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Server exposes a Ledger with the counter service wire format
type Server struct {
	ledger *Ledger
	logger *zap.Logger
}

func NewServer(l *Ledger, logger *zap.Logger) *Server {
	return &Server{ledger: l, logger: logger.Named("ledger-http")}
}

// Register mounts the service under prefix, e.g. "/api/co2". The reset
// route is wrapped in resetGuard.
func (s *Server) Register(r *mux.Router, prefix string, resetGuard mux.MiddlewareFunc) {
	r.HandleFunc(prefix, s.handleTotal).Methods(http.MethodGet)
	r.HandleFunc(prefix+"/add", s.handleAdd).Methods(http.MethodPost)
	r.Handle(prefix+"/reset", resetGuard(http.HandlerFunc(s.handleReset))).Methods(http.MethodPost)
}

func (s *Server) handleTotal(w http.ResponseWriter, r *http.Request) {
	total, err := s.ledger.Total(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	s.ok(w, co2api.TotalData{TotalCO2Saved: total})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req co2api.AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}

	total, _, err := s.ledger.Add(r.Context(), req.Amount, req.Order())
	if errors.Is(err, ErrInvalidAmount) {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	s.ok(w, co2api.AddData{NewTotal: total})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	total, err := s.ledger.Reset(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	s.ok(w, co2api.TotalData{TotalCO2Saved: total})
}

func (s *Server) ok(w http.ResponseWriter, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	s.write(w, http.StatusOK, co2api.Envelope{Success: true, Data: raw})
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	s.write(w, status, co2api.Envelope{Success: false, Error: err.Error()})
}

func (s *Server) write(w http.ResponseWriter, status int, env co2api.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
