// internal/server/handlers.go
package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"claims-gateway/internal/chat"
	commonerrors "claims-gateway/internal/common/errors"
	"claims-gateway/internal/forms"
	"claims-gateway/internal/models"
)

// listResponse is the Django-compatible paginated envelope.
type listResponse struct {
	Count    int            `json:"count"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
	Results  []models.Claim `json:"results"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.writeError(w, http.StatusBadRequest, "invalid page parameter")
			return
		}
		page = parsed
	}
	search := r.URL.Query().Get("search")

	result, err := s.service.List(r.Context(), page, search)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, listResponse{
		Count:    result.Count,
		Next:     pageLink(r.URL, page+1, result.HasNext),
		Previous: pageLink(r.URL, page-1, result.HasPrevious),
		Results:  result.Items,
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	claim, err := s.service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, claim)
}

// handleCreate runs the full submission pipeline: coercion, field validation,
// the aggregated format check, then the fallback-backed create.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	draft, fieldErrors := forms.Coerce(raw)
	if !fieldErrors.Empty() {
		s.writeFieldErrors(w, fieldErrors)
		return
	}
	if fe := forms.Validate(draft); fe != nil {
		s.writeFieldErrors(w, fe)
		return
	}
	if err := forms.CheckDataFormat(draft); err != nil {
		s.writeServiceError(w, err)
		return
	}

	claim, err := s.service.Create(r.Context(), draft)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, claim)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var claim models.Claim
	if err := json.NewDecoder(r.Body).Decode(&claim); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	updated, err := s.service.Update(r.Context(), r.PathValue("id"), &claim)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFilterByDamageScore(w http.ResponseWriter, r *http.Request) {
	minVal, maxVal, err := rangeParams(r, "min_score", "max_score")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	claims, err := s.service.FilterByDamageScore(r.Context(), minVal, maxVal)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, claims)
}

func (s *Server) handleFilterByRepairAmount(w http.ResponseWriter, r *http.Request) {
	minVal, maxVal, err := rangeParams(r, "min_amount", "max_amount")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	claims, err := s.service.FilterByRepairAmount(r.Context(), minVal, maxVal)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, claims)
}

func (s *Server) handleRag(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Query == "" {
		s.writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	answer, err := s.service.RagQuery(r.Context(), payload.Query)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"session_id"`
		ClaimID   string `json:"claim_id"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Message == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if payload.SessionID == "" {
		payload.SessionID = "default"
	}

	reply, err := s.chat.Exchange(r.Context(), payload.SessionID, payload.ClaimID, payload.Message)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"message": reply.Text, "id": reply.ID})
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.chat.History(r.Context(), r.PathValue("session"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if history == nil {
		history = []chat.Message{}
	}
	s.writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, models.HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Message:   "Claims gateway is running",
	})
}

// ==========================
// Response helpers
// ==========================

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]string{"detail": detail})
}

func (s *Server) writeFieldErrors(w http.ResponseWriter, fieldErrors forms.FieldErrors) {
	s.writeJSON(w, http.StatusBadRequest, fieldErrors)
}

// writeServiceError maps standard error codes onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch commonerrors.CodeOf(err) {
	case commonerrors.ErrCodeClaimNotFound:
		s.writeError(w, http.StatusNotFound, "Not found.")
	case commonerrors.ErrCodeClaimValidationFailed, commonerrors.ErrCodeRemoteValidationFailed:
		var stdErr *commonerrors.StandardError
		detail := "validation failed"
		if errors.As(err, &stdErr) {
			detail = stdErr.Details
		}
		s.writeError(w, http.StatusBadRequest, detail)
	case commonerrors.ErrCodeFallbackExhausted:
		s.writeError(w, http.StatusBadGateway, "All backends are currently unavailable.")
	default:
		s.logger.Error("unhandled service error", map[string]interface{}{
			"error": err.Error(),
		})
		s.writeError(w, http.StatusInternalServerError, "Internal error.")
	}
}

func pageLink(current *url.URL, page int, present bool) *string {
	if !present {
		return nil
	}
	link := *current
	query := link.Query()
	query.Set("page", strconv.Itoa(page))
	link.RawQuery = query.Encode()
	text := link.String()
	return &text
}

func rangeParams(r *http.Request, minKey, maxKey string) (*float64, *float64, error) {
	parse := func(key string) (*float64, error) {
		raw := r.URL.Query().Get(key)
		if raw == "" {
			return nil, nil
		}
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s parameter", key)
		}
		return &val, nil
	}

	minVal, err := parse(minKey)
	if err != nil {
		return nil, nil, err
	}
	maxVal, err := parse(maxKey)
	if err != nil {
		return nil, nil, err
	}
	return minVal, maxVal, nil
}
