package server

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bobmcallan/carfeed/internal/common"
	"github.com/bobmcallan/carfeed/internal/interfaces"
	"github.com/bobmcallan/carfeed/internal/models"
	"github.com/bobmcallan/carfeed/internal/services/feedback"
)

type createFeedbackRequest struct {
	OriginalText string `json:"original_text"`
	Product      string `json:"product"`
}

type updateFeedbackRequest struct {
	TranslatedText string `json:"translated_text"`
	Sentiment      string `json:"sentiment"`
}

// parseListOptions reads the list query. Absent or "All" filters mean no
// constraint. show_all is only honoured for admin callers.
func parseListOptions(q url.Values, isAdmin bool) (interfaces.FeedbackListOptions, string) {
	opts := interfaces.FeedbackListOptions{
		Page:     1,
		PageSize: interfaces.DefaultPageSize,
	}

	if v := q.Get("product"); v != "" && v != models.FilterAll {
		if !models.ValidProducts[v] {
			return opts, "unknown product: " + v
		}
		opts.Product = v
	}
	if v := q.Get("sentiment"); v != "" && v != models.FilterAll {
		if !models.ValidSentimentFilters[v] {
			return opts, "unknown sentiment: " + v
		}
		opts.Sentiment = v
	}
	if v := q.Get("original_language"); v != "" && v != models.FilterAll {
		if !models.ValidLanguageFilters[v] {
			return opts, "unknown original_language: " + v
		}
		opts.Language = v
	}

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return opts, "page must be a positive integer"
		}
		opts.Page = page
	}
	if v := q.Get("page_size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return opts, "page_size must be an integer"
		}
		opts.PageSize = size
	}

	if showAll, err := strconv.ParseBool(q.Get("show_all")); err == nil && showAll && isAdmin {
		opts.ShowAll = true
	}

	return opts.Normalize(), ""
}

// handleFeedbackList handles GET /api/feedback.
func (s *Server) handleFeedbackList(w http.ResponseWriter, r *http.Request) {
	opts, msg := parseListOptions(r.URL.Query(), common.IsAdminRequest(r.Context()))
	if msg != "" {
		WriteError(w, http.StatusBadRequest, msg)
		return
	}

	page, err := s.feedback.List(r.Context(), opts)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list feedback")
		WriteError(w, http.StatusInternalServerError, "failed to list feedback")
		return
	}
	if page.Items == nil {
		page.Items = []*models.Feedback{}
	}
	WriteJSON(w, http.StatusOK, page)
}

// handleFeedbackCreate handles POST /api/feedback.
func (s *Server) handleFeedbackCreate(w http.ResponseWriter, r *http.Request) {
	var req createFeedbackRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	fb, err := s.feedback.Submit(r.Context(), req.OriginalText, req.Product)
	if err != nil {
		if errors.Is(err, feedback.ErrInvalid) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error().Err(err).Str("product", req.Product).Msg("Failed to create feedback")
		WriteError(w, http.StatusInternalServerError, "failed to create feedback")
		return
	}
	WriteJSON(w, http.StatusOK, fb)
}

// handleFeedbackUpdate handles PUT /api/feedback/{id}.
func (s *Server) handleFeedbackUpdate(w http.ResponseWriter, r *http.Request, id string) {
	if !requireAdmin(w, r) {
		return
	}

	var req updateFeedbackRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	fb, err := s.feedback.Moderate(r.Context(), id, req.TranslatedText, req.Sentiment)
	switch {
	case errors.Is(err, feedback.ErrInvalid):
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, feedback.ErrNotEditable):
		WriteError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		s.logger.Error().Err(err).Str("id", id).Msg("Failed to update feedback")
		WriteError(w, http.StatusInternalServerError, "failed to update feedback")
		return
	case fb == nil:
		WriteError(w, http.StatusNotFound, "feedback not found")
		return
	}
	WriteJSON(w, http.StatusOK, fb)
}

// handleFeedbackDelete handles DELETE /api/feedback/{id}.
func (s *Server) handleFeedbackDelete(w http.ResponseWriter, r *http.Request, id string) {
	if !requireAdmin(w, r) {
		return
	}

	if err := s.feedback.Delete(r.Context(), id); err != nil {
		s.logger.Error().Err(err).Str("id", id).Msg("Failed to delete feedback")
		WriteError(w, http.StatusInternalServerError, "failed to delete feedback")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleStats handles GET /api/stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	stats, err := s.feedback.Stats(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to compute stats")
		WriteError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}
