package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/wricardo/gameon-room/game/service"
	"github.com/wricardo/gameon-room/protocol"
)

// Largest frame accepted by the simulate endpoint
const maxFrameSize = 64 * 1024

// Publisher delivers replies to every connected session
type Publisher interface {
	Publish(msg protocol.Message) int
}

// Server represents the REST API server
type Server struct {
	service   service.RoomService
	websocket http.HandlerFunc
	publisher Publisher
	router    *mux.Router
	log       logrus.FieldLogger
}

// NewServer creates a new API server. ws serves the room's websocket
// endpoint; publisher receives replies for simulated frames sent with
// ?publish=true. Either may be nil.
func NewServer(roomService service.RoomService, ws http.HandlerFunc, publisher Publisher, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		service:   roomService,
		websocket: ws,
		publisher: publisher,
		router:    mux.NewRouter(),
		log:       log,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(s.logRequests)

	rest := s.router.PathPrefix("/rest").Subrouter()

	rest.HandleFunc("/health", s.handleHealth).Methods("GET")
	rest.HandleFunc("/room", s.handleGetRoom).Methods("GET")
	rest.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	rest.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	rest.HandleFunc("/configs/refresh", s.handleRefreshConfigs).Methods("POST")
	rest.HandleFunc("/simulate", s.handleSimulate).Methods("POST")

	// WebSocket
	if s.websocket != nil {
		s.router.HandleFunc("/room", s.websocket)
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// logRequests logs every request at debug level
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
		}).Debug("Handled request")
	})
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Room Handlers

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.service.Room(r.Context()))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := s.service.ListSessions(r.Context())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"sessions": sessions,
	})
}

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(configs),
		"configs": configs,
	})
}

// handleRefreshConfigs rereads the config directory. The room being served
// is not reconfigured.
func (s *Server) handleRefreshConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.RefreshConfigs(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(configs),
		"configs": configs,
	})
}

// handleSimulate decodes the raw frame in the request body and returns the
// encoded replies the room would send. Nothing is broadcast unless
// ?publish=true is given.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxFrameSize+1))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read request")
		return
	}
	if len(body) > maxFrameSize {
		respondError(w, http.StatusRequestEntityTooLarge, "frame too large")
		return
	}

	frame := strings.TrimSpace(string(body))
	replies, err := s.service.HandleFrame(r.Context(), frame)
	if err != nil {
		var decodeErr *protocol.DecodeError
		switch {
		case errors.As(err, &decodeErr):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, protocol.ErrMissingField), errors.Is(err, protocol.ErrMalformedBody):
			respondError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	published := false
	if r.URL.Query().Get("publish") == "true" && s.publisher != nil {
		for _, reply := range replies {
			s.publisher.Publish(reply)
		}
		published = true
	}

	frames := make([]string, len(replies))
	for i, reply := range replies {
		frames[i] = reply.Encode()
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"frame":     frame,
		"replies":   frames,
		"published": published,
	})
}
