package server

import (
	"net/http"

	"github.com/bobmcallan/carfeed/internal/common"
)

const feedbackPrefix = "/api/feedback/"

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/auth/login", s.handleAuthLogin)

	mux.HandleFunc("/api/feedback", s.routeFeedbackCollection)
	mux.HandleFunc(feedbackPrefix, s.routeFeedbackItem)
	mux.HandleFunc("/api/stats", s.handleStats)
}

// routeFeedbackCollection serves /api/feedback (and /api/feedback/).
func (s *Server) routeFeedbackCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleFeedbackList(w, r)
	case http.MethodPost:
		s.handleFeedbackCreate(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// routeFeedbackItem serves /api/feedback/{id}.
func (s *Server) routeFeedbackItem(w http.ResponseWriter, r *http.Request) {
	id, ok := resourceID(r.URL.Path, feedbackPrefix)
	switch {
	case !ok:
		WriteError(w, http.StatusNotFound, "not found")
		return
	case id == "":
		s.routeFeedbackCollection(w, r)
		return
	}

	switch r.Method {
	case http.MethodPut:
		s.handleFeedbackUpdate(w, r, id)
	case http.MethodDelete:
		s.handleFeedbackDelete(w, r, id)
	default:
		RequireMethod(w, r, http.MethodPut, http.MethodDelete)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		WriteJSON(w, http.StatusOK, common.GetVersionInfo())
	}
}
