package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pavilion-live/pavilion/internal/store"
	"github.com/pavilion-live/pavilion/pkg/models"
)

// CreateMatch schedules a new fixture
func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req struct {
		MatchNumber int              `json:"match_number"`
		Name        string           `json:"name"`
		Type        models.MatchType `json:"match_type"`
		TeamA       string           `json:"team_a"`
		TeamB       string           `json:"team_b"`
		TotalOvers  int              `json:"overs"`
		ScheduledAt time.Time        `json:"scheduled_at"`
		Venue       string           `json:"venue"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.TeamA == "" || req.TeamB == "" {
		respondError(w, http.StatusBadRequest, "team_a and team_b are required", nil)
		return
	}
	if req.TeamA == req.TeamB {
		respondError(w, http.StatusBadRequest, "a team cannot play itself", nil)
		return
	}
	for _, teamID := range []string{req.TeamA, req.TeamB} {
		team, err := h.store.GetTeam(ctx, teamID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to verify team", err)
			return
		}
		if team == nil {
			respondError(w, http.StatusBadRequest, "unknown team: "+teamID, nil)
			return
		}
	}

	if req.Type == "" {
		req.Type = models.MatchT20
	}
	if req.TotalOvers <= 0 {
		req.TotalOvers = req.Type.DefaultOvers()
	}
	now := time.Now().UTC()
	match := &models.Match{
		ID:          uuid.New().String(),
		MatchNumber: req.MatchNumber,
		Name:        req.Name,
		Type:        req.Type,
		TeamA:       req.TeamA,
		TeamB:       req.TeamB,
		TotalOvers:  req.TotalOvers,
		Status:      models.StatusUpcoming,
		ScheduledAt: req.ScheduledAt,
		Venue:       req.Venue,
		CurrentScore: models.Score{
			Overs: "0.0",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.CreateMatch(ctx, match); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create match", err)
		return
	}

	respondJSON(w, http.StatusCreated, match)
}

// GetMatches lists matches with optional filtering
// Query params: status, team, limit, offset
func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	limit := parseIntParam(r, "limit", 100)
	if limit > 500 {
		limit = 500
	}
	filters := store.MatchFilters{
		Status: r.URL.Query().Get("status"),
		TeamID: r.URL.Query().Get("team"),
		Limit:  limit,
		Offset: parseIntParam(r, "offset", 0),
	}

	matches, err := h.store.ListMatches(ctx, filters)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve matches", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"matches": matches,
		"count":   len(matches),
	})
}

// GetMatch retrieves a single match by ID
func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	match, err := h.store.GetMatch(ctx, chi.URLParam(r, "matchID"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve match", err)
		return
	}
	if match == nil {
		respondError(w, http.StatusNotFound, "match not found", nil)
		return
	}

	respondJSON(w, http.StatusOK, match)
}

// UpdateMatchStatus moves a match through its lifecycle: toss results,
// abandonments, postponements. Live transitions happen via StartInnings.
func (h *Handler) UpdateMatchStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	match, err := h.store.GetMatch(ctx, chi.URLParam(r, "matchID"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve match", err)
		return
	}
	if match == nil {
		respondError(w, http.StatusNotFound, "match not found", nil)
		return
	}

	var req struct {
		Status       models.MatchStatus `json:"status"`
		StatusReason string             `json:"status_reason"`
		TossWinner   string             `json:"toss_winner"`
		ElectedTo    string             `json:"elected_to"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.Status != "" {
		switch req.Status {
		case models.StatusAbandoned, models.StatusPostponed, models.StatusUpcoming:
			if match.Status == models.StatusCompleted {
				respondError(w, http.StatusConflict, "match already completed", nil)
				return
			}
			match.Status = req.Status
			match.StatusReason = req.StatusReason
		default:
			respondError(w, http.StatusBadRequest, "status must be abandoned, postponed or upcoming", nil)
			return
		}
	}
	if req.TossWinner != "" {
		if req.TossWinner != match.TeamA && req.TossWinner != match.TeamB {
			respondError(w, http.StatusBadRequest, "toss_winner must be one of the playing teams", nil)
			return
		}
		match.TossWinner = req.TossWinner
		match.ElectedTo = req.ElectedTo
	}

	match.UpdatedAt = time.Now().UTC()
	if err := h.store.UpdateMatch(ctx, match); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update match", err)
		return
	}
	if h.cache != nil {
		if err := h.cache.InvalidateMatch(ctx, match.ID); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to invalidate cache", err)
			return
		}
	}

	respondJSON(w, http.StatusOK, match)
}

// GetInningsList returns every innings of a match
func (h *Handler) GetInningsList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	matchID := chi.URLParam(r, "matchID")
	innings, err := h.store.GetInningsByMatch(ctx, matchID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve innings", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"innings": innings,
		"count":   len(innings),
	})
}

// GetOverDeliveries returns every delivery of one over, ball by ball
func (h *Handler) GetOverDeliveries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	matchID := chi.URLParam(r, "matchID")
	over, err := h.store.GetOver(ctx, chi.URLParam(r, "overID"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve over", err)
		return
	}
	if over == nil || over.MatchID != matchID {
		respondError(w, http.StatusNotFound, "over not found", nil)
		return
	}

	deliveries, err := h.store.GetDeliveriesByOver(ctx, over.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve deliveries", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"over":       over,
		"deliveries": deliveries,
		"count":      len(deliveries),
	})
}

// GetDeliveryDetail returns a single delivery by ID
func (h *Handler) GetDeliveryDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	matchID := chi.URLParam(r, "matchID")
	d, err := h.store.GetDelivery(ctx, chi.URLParam(r, "deliveryID"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve delivery", err)
		return
	}
	if d == nil || d.MatchID != matchID {
		respondError(w, http.StatusNotFound, "delivery not found", nil)
		return
	}

	respondJSON(w, http.StatusOK, d)
}

// PostCommentaryNote records a free-text scorer note on the feed
func (h *Handler) PostCommentaryNote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	matchID := chi.URLParam(r, "matchID")
	match, err := h.store.GetMatch(ctx, matchID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve match", err)
		return
	}
	if match == nil {
		respondError(w, http.StatusNotFound, "match not found", nil)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Text == "" {
		respondError(w, http.StatusBadRequest, "text is required", nil)
		return
	}

	innings, err := h.store.CurrentInnings(ctx, matchID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve innings", err)
		return
	}

	cm := &models.Commentary{
		ID:        uuid.New().String(),
		MatchID:   matchID,
		Text:      req.Text,
		Type:      models.CommentaryInfo,
		CreatedAt: time.Now().UTC(),
	}
	if innings != nil {
		cm.InningsID = innings.ID
		cm.OverID = innings.CurrentOverID
	}
	if err := h.store.CreateCommentary(ctx, cm); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to record commentary", err)
		return
	}

	respondJSON(w, http.StatusCreated, cm)
}

// GetCommentaryFeed returns a match's commentary, newest first
// Query params: limit
func (h *Handler) GetCommentaryFeed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	matchID := chi.URLParam(r, "matchID")
	limit := parseIntParam(r, "limit", 50)

	feed, err := h.store.GetCommentary(ctx, matchID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve commentary", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"commentary": feed,
		"count":      len(feed),
	})
}
