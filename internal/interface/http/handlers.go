// Package http implements the REST API for CyberMatch Hub.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cybermatch/cybermatch-hub/internal/application/command"
	"github.com/cybermatch/cybermatch-hub/internal/application/query"
	"github.com/cybermatch/cybermatch-hub/internal/domain/mentorship"
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
	"github.com/cybermatch/cybermatch-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "CyberMatch Hub API",
		"version":     "v1",
		"description": "REST API for CyberMatch Hub - mentor matching for cybersecurity learners",
		"endpoints": map[string]string{
			"health":   "/health",
			"matches":  "/api/v1/seekers/{id}/matches",
			"session":  "/api/v1/seekers/{id}/session",
			"requests": "/api/v1/requests",
			"blocks":   "/api/v1/blocks",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	// Default health response
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// MATCHING HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetMatches handles GET /api/v1/seekers/{id}/matches
func (s *Server) handleGetMatches(w http.ResponseWriter, r *http.Request) {
	seekerID := r.PathValue("id")
	if seekerID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Seeker ID is required")
		return
	}

	if s.deps.GetMatchesHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Matches handler not configured")
		return
	}

	q := query.GetMatchesQuery{
		SeekerID:  seekerID,
		Location:  getQueryParam(r, "location", ""),
		NameQuery: getQueryParam(r, "q", ""),
		Threshold: getQueryParamFloat(r, "threshold"),
		SkipCache: getQueryParamBool(r, "skip_cache"),
	}
	if limit := getQueryParamInt(r, "limit", 0); limit > 0 {
		q.Limit = &limit
	}

	result, err := s.deps.GetMatchesHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err, "Failed to rank matches",
			logger.SeekerID(seekerID))
		return
	}

	meta := &ResponseMeta{TotalCount: len(result.Matches)}
	s.writeResult(w, r, result, meta)
}

// ══════════════════════════════════════════════════════════════════════════════
// MATCH SESSION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleStartSession handles POST /api/v1/seekers/{id}/session
func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	seekerID := r.PathValue("id")
	if s.deps.Sessions == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Sessions not configured")
		return
	}

	q := query.GetMatchesQuery{
		SeekerID:  seekerID,
		Location:  getQueryParam(r, "location", ""),
		NameQuery: getQueryParam(r, "q", ""),
		Threshold: getQueryParamFloat(r, "threshold"),
	}

	view, err := s.deps.Sessions.StartSession(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err, "Failed to start match session",
			logger.SeekerID(seekerID))
		return
	}

	writeJSON(w, http.StatusCreated, view)
}

// handleGetSession handles GET /api/v1/seekers/{id}/session
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	seekerID := r.PathValue("id")
	if s.deps.Sessions == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Sessions not configured")
		return
	}

	view, err := s.deps.Sessions.Current(r.Context(), shared.PartyID(seekerID))
	if err != nil {
		s.writeDomainError(w, err, "Failed to read match session",
			logger.SeekerID(seekerID))
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// handleAdvanceSession handles POST /api/v1/seekers/{id}/session/advance
func (s *Server) handleAdvanceSession(w http.ResponseWriter, r *http.Request) {
	seekerID := r.PathValue("id")
	if s.deps.Sessions == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Sessions not configured")
		return
	}

	view, err := s.deps.Sessions.Advance(r.Context(), shared.PartyID(seekerID))
	if err != nil {
		s.writeDomainError(w, err, "Failed to advance match session",
			logger.SeekerID(seekerID))
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// handleSessionRequest handles POST /api/v1/seekers/{id}/session/request
// It requests mentorship from the current candidate and advances the deck.
func (s *Server) handleSessionRequest(w http.ResponseWriter, r *http.Request) {
	seekerID := r.PathValue("id")
	if s.deps.Sessions == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Sessions not configured")
		return
	}

	result, view, err := s.deps.Sessions.ActOnCurrent(r.Context(), shared.PartyID(seekerID), getRequestID(r.Context()))
	if err != nil {
		s.writeDomainError(w, err, "Failed to request mentorship from current candidate",
			logger.SeekerID(seekerID))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"request":           toRequestResponse(result.Request),
		"already_requested": result.AlreadyRequested,
		"session":           view,
	})
}

// handleEndSession handles DELETE /api/v1/seekers/{id}/session
func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	seekerID := r.PathValue("id")
	if s.deps.Sessions == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Sessions not configured")
		return
	}

	s.deps.Sessions.EndSession(r.Context(), shared.PartyID(seekerID))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

// ══════════════════════════════════════════════════════════════════════════════
// MENTORSHIP REQUEST HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// createRequestBody is the payload of POST /api/v1/requests.
type createRequestBody struct {
	SeekerID    string `json:"seeker_id"`
	CandidateID string `json:"candidate_id"`
}

// handleCreateRequest handles POST /api/v1/requests
func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	if s.deps.RequestMentorshipHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Request handler not configured")
		return
	}

	var body createRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body")
		return
	}

	cmd := command.RequestMentorshipCommand{
		SeekerID:      body.SeekerID,
		CandidateID:   body.CandidateID,
		CorrelationID: getRequestID(r.Context()),
	}

	result, err := s.deps.RequestMentorshipHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, err, "Failed to create mentorship request",
			logger.SeekerID(body.SeekerID), logger.CandidateID(body.CandidateID))
		return
	}

	status := http.StatusCreated
	if result.AlreadyRequested {
		status = http.StatusOK
	}

	writeJSON(w, status, map[string]interface{}{
		"request":           toRequestResponse(result.Request),
		"already_requested": result.AlreadyRequested,
	})
}

// respondRequestBody is the payload of POST /api/v1/requests/{id}/respond.
type respondRequestBody struct {
	ActorID string `json:"actor_id"`
	Action  string `json:"action"` // accepted or declined
}

// handleRespondRequest handles POST /api/v1/requests/{id}/respond
func (s *Server) handleRespondRequest(w http.ResponseWriter, r *http.Request) {
	requestID := r.PathValue("id")
	if s.deps.RespondToRequestHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Respond handler not configured")
		return
	}

	var body respondRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body")
		return
	}

	status, err := mentorship.ParseStatus(body.Action)
	if err != nil || status == mentorship.StatusPending {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Action must be accepted or declined")
		return
	}

	cmd := command.RespondToRequestCommand{
		RequestID:     requestID,
		ActorID:       body.ActorID,
		Status:        status,
		CorrelationID: getRequestID(r.Context()),
	}

	result, err := s.deps.RespondToRequestHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, err, "Failed to answer mentorship request",
			logger.RequestID(requestID))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"request": toRequestResponse(result.Request),
		"no_op":   result.NoOp,
	})
}

// handleListRequests handles GET /api/v1/parties/{id}/requests
func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	partyID := r.PathValue("id")
	if s.deps.GetRequestsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Requests handler not configured")
		return
	}

	q := query.GetRequestsQuery{
		PartyID: partyID,
		Role:    getQueryParam(r, "role", "candidate"),
		Status:  getQueryParam(r, "status", ""),
		Limit:   getQueryParamInt(r, "limit", 0),
		Offset:  getQueryParamInt(r, "offset", 0),
	}

	if err := q.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.GetRequestsHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err, "Failed to list mentorship requests",
			logger.String("party_id", partyID))
		return
	}

	meta := &ResponseMeta{TotalCount: len(result.Requests)}
	s.writeResult(w, r, result, meta)
}

// ══════════════════════════════════════════════════════════════════════════════
// BLOCK HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// createBlockBody is the payload of POST /api/v1/blocks.
type createBlockBody struct {
	BlockerID string `json:"blocker_id"`
	BlockedID string `json:"blocked_id"`
}

// handleCreateBlock handles POST /api/v1/blocks
func (s *Server) handleCreateBlock(w http.ResponseWriter, r *http.Request) {
	if s.deps.SetBlockedHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Block handler not configured")
		return
	}

	var body createBlockBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body")
		return
	}

	cmd := command.SetBlockedCommand{
		BlockerID:     body.BlockerID,
		BlockedID:     body.BlockedID,
		Blocked:       true,
		CorrelationID: getRequestID(r.Context()),
	}

	result, err := s.deps.SetBlockedHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, err, "Failed to create block",
			logger.String("blocker_id", body.BlockerID), logger.String("blocked_id", body.BlockedID))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]bool{"blocked": result.Blocked})
}

// handleGetBlocked handles GET /api/v1/blocks/{a}/{b}
// The answer is symmetric: a block in either direction counts. Used by
// collaborators, such as the messaging service, to refuse interaction.
func (s *Server) handleGetBlocked(w http.ResponseWriter, r *http.Request) {
	partyA := r.PathValue("a")
	partyB := r.PathValue("b")
	if s.deps.BlockGate == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Block gate not configured")
		return
	}
	if partyA == "" || partyB == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Both party IDs are required")
		return
	}

	blocked, err := s.deps.BlockGate.IsBlocked(r.Context(), shared.PartyID(partyA), shared.PartyID(partyB))
	if err != nil {
		s.writeDomainError(w, err, "Failed to check block",
			logger.String("party_a", partyA), logger.String("party_b", partyB))
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"blocked": blocked})
}

// handleDeleteBlock handles DELETE /api/v1/blocks/{blocker}/{blocked}
func (s *Server) handleDeleteBlock(w http.ResponseWriter, r *http.Request) {
	blockerID := r.PathValue("blocker")
	blockedID := r.PathValue("blocked")
	if s.deps.SetBlockedHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Block handler not configured")
		return
	}

	cmd := command.SetBlockedCommand{
		BlockerID:     blockerID,
		BlockedID:     blockedID,
		Blocked:       false,
		CorrelationID: getRequestID(r.Context()),
	}

	result, err := s.deps.SetBlockedHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, err, "Failed to remove block",
			logger.String("blocker_id", blockerID), logger.String("blocked_id", blockedID))
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"blocked": result.Blocked})
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// writeDomainError maps domain errors onto HTTP status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, err error, message string, fields ...logger.Field) {
	status, code := domainErrorStatus(err)

	if status >= http.StatusInternalServerError {
		s.logger.Error(message, append(fields, logger.Err(err))...)
	} else {
		s.logger.Warn(message, append(fields, logger.Err(err))...)
	}

	writeJSONError(w, status, code, err.Error())
}

// domainErrorStatus resolves a domain error to an HTTP status and error code.
func domainErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, shared.ErrNoActiveSession):
		return http.StatusNotFound, "no_active_session"
	case errors.Is(err, shared.ErrQueueExhausted):
		return http.StatusConflict, "queue_exhausted"
	case errors.Is(err, shared.ErrBlockedPair):
		return http.StatusForbidden, "blocked"
	case shared.IsNotFound(err):
		return http.StatusNotFound, "not_found"
	case shared.IsUnauthorized(err):
		return http.StatusForbidden, "forbidden"
	case shared.IsAlreadyExists(err),
		errors.Is(err, shared.ErrStateTransition),
		errors.Is(err, shared.ErrInvalidState):
		return http.StatusConflict, "conflict"
	case shared.IsValidation(err), errors.Is(err, shared.ErrInvalidFormat):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, shared.ErrServiceUnavailable), errors.Is(err, shared.ErrTimeout):
		return http.StatusServiceUnavailable, "service_unavailable"
	case errors.Is(err, shared.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limit_exceeded"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE SHAPING
// ══════════════════════════════════════════════════════════════════════════════

// writeResult writes a successful response with metadata and request ID.
func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, data interface{}, meta *ResponseMeta) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if meta == nil {
		meta = &ResponseMeta{}
	}
	meta.Timestamp = time.Now().UTC()
	meta.Version = "v1"

	response := JSONResponse{
		Success:   true,
		Data:      data,
		Meta:      meta,
		RequestID: getRequestID(r.Context()),
	}

	_ = json.NewEncoder(w).Encode(response)
}

// toRequestResponse converts a domain request into the wire shape shared
// with the list endpoint.
func toRequestResponse(req *mentorship.Request) *query.RequestDTO {
	if req == nil {
		return nil
	}

	dto := &query.RequestDTO{
		ID:          req.ID,
		SeekerID:    req.SeekerID.String(),
		CandidateID: req.CandidateID.String(),
		Status:      string(req.Status),
		CreatedAt:   req.CreatedAt,
	}
	if req.RespondedAt != nil {
		t := *req.RespondedAt
		dto.RespondedAt = &t
	}
	return dto
}
