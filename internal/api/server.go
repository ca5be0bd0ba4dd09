package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/uzairbcm/chronicle-android-bulk-data-downloader/internal/downloader"
	"github.com/uzairbcm/chronicle-android-bulk-data-downloader/internal/history"
	"github.com/uzairbcm/chronicle-android-bulk-data-downloader/internal/progress"
)

// StatusProvider exposes the current run state to the API.
type StatusProvider interface {
	Status() downloader.Snapshot
	Cancel()
}

// Server serves run status, download history and a live event stream
// so a dashboard or script can observe a running download.
type Server struct {
	status   StatusProvider
	history  history.Repository
	events   *progress.Broadcaster
	upgrader websocket.Upgrader
}

// NewServer creates an API server. history and events may be nil, in
// which case the corresponding endpoints report empty data.
func NewServer(status StatusProvider, hist history.Repository, events *progress.Broadcaster) *Server {
	return &Server{
		status:  status,
		history: hist,
		events:  events,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Local observability endpoint, any origin is fine.
				return true
			},
		},
	}
}

// Router creates and configures the HTTP router.
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", s.getStatus).Methods("GET")
	api.HandleFunc("/cancel", s.cancelRun).Methods("POST")
	api.HandleFunc("/downloads", s.getDownloads).Methods("GET")
	api.HandleFunc("/ws", s.handleWebSocket)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	return c.Handler(router)
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.status.Status())
}

func (s *Server) cancelRun(w http.ResponseWriter, r *http.Request) {
	s.status.Cancel()
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) getDownloads(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		runID = s.status.Status().RunID
	}

	records := []history.Record{}
	if s.history != nil && runID != "" {
		var err error
		records, err = s.history.ListByRun(r.Context(), runID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	writeJSON(w, records)
}

// handleWebSocket relays run events to the client until it
// disconnects.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		http.Error(w, "event stream not available", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events := s.events.Subscribe()
	defer s.events.Unsubscribe(events)

	for event := range events {
		if err := conn.WriteJSON(event); err != nil {
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
