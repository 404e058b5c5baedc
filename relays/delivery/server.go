package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// StatusServer exposes delivery reports and metrics over HTTP.
type StatusServer struct {
	addr     string
	registry *Registry
	metrics  *Metrics
}

func NewStatusServer(addr string, registry *Registry, metrics *Metrics) *StatusServer {
	return &StatusServer{
		addr:     addr,
		registry: registry,
		metrics:  metrics,
	}
}

func (s *StatusServer) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.health).Methods("GET")
	r.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	r.HandleFunc("/messages", s.listMessages).Methods("GET")
	r.HandleFunc("/messages/{id}", s.getMessage).Methods("GET")

	return r
}

func (s *StatusServer) Start(ctx context.Context, eg *errgroup.Group) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	eg.Go(func() error {
		log.WithField("addr", s.addr).Info("Starting status server")
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return nil
}

func (s *StatusServer) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *StatusServer) listMessages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.All())
}

func (s *StatusServer) getMessage(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["id"]
	if len(raw) != 66 && len(raw) != 64 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id must be a 32 byte hex string"})
		return
	}

	report, ok := s.registry.ByID(common.HexToHash(raw))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "message not found"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Failed to write response")
	}
}
