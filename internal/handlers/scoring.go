package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pavilion-live/pavilion/internal/engine"
	"github.com/pavilion-live/pavilion/internal/scoring"
)

// StartInnings opens the next innings of a match
func (h *Handler) StartInnings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req scoring.InningsRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Striker == "" || req.NonStriker == "" || req.OpeningBowler == "" {
		respondError(w, http.StatusBadRequest, "striker, non_striker and opening_bowler are required", nil)
		return
	}
	if req.Striker == req.NonStriker {
		respondError(w, http.StatusBadRequest, "striker and non_striker must differ", nil)
		return
	}

	innings, err := h.scoring.StartInnings(ctx, chi.URLParam(r, "matchID"), req)
	if err != nil {
		respondScoringError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, innings)
}

// SubmitDelivery records one ball
func (h *Handler) SubmitDelivery(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req scoring.DeliveryRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.RunsOffBat < 0 || req.RunsOffBat > 6 {
		respondError(w, http.StatusBadRequest, "runs must be between 0 and 6", nil)
		return
	}

	outcome, err := h.scoring.SubmitDelivery(ctx, chi.URLParam(r, "matchID"), req)
	if err != nil {
		respondScoringError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"delivery": outcome.Delivery,
		"innings":  outcome.Innings,
		"match":    outcome.Match,
		"events":   outcome.Events,
	})
}

// UndoLastDelivery retracts the most recent ball of the match
func (h *Handler) UndoLastDelivery(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	rev, err := h.scoring.UndoLastDelivery(ctx, chi.URLParam(r, "matchID"))
	if err != nil {
		respondScoringError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"removed": rev.RemovedDelivery,
		"innings": rev.Innings,
		"match":   rev.Match,
	})
}

// NominateBowler sets the bowler for the next over
func (h *Handler) NominateBowler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req struct {
		Bowler string `json:"bowler"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Bowler == "" {
		respondError(w, http.StatusBadRequest, "bowler is required", nil)
		return
	}

	innings, err := h.scoring.NominateBowler(ctx, chi.URLParam(r, "matchID"), req.Bowler)
	if err != nil {
		respondScoringError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, innings)
}

// NewBatter replaces the dismissed striker
func (h *Handler) NewBatter(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req struct {
		Batter string `json:"batter"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Batter == "" {
		respondError(w, http.StatusBadRequest, "batter is required", nil)
		return
	}

	innings, err := h.scoring.NewBatter(ctx, chi.URLParam(r, "matchID"), req.Batter)
	if err != nil {
		respondScoringError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, innings)
}

// respondScoringError maps scoring and engine errors onto HTTP statuses
func respondScoringError(w http.ResponseWriter, err error) {
	var nomErr *engine.NominationError
	switch {
	case errors.Is(err, scoring.ErrMatchNotFound):
		respondError(w, http.StatusNotFound, "match not found", nil)
	case errors.As(err, &nomErr):
		respondError(w, http.StatusUnprocessableEntity, nomErr.Msg, nil)
	case errors.Is(err, scoring.ErrMatchNotLive),
		errors.Is(err, scoring.ErrNoActiveInnings),
		errors.Is(err, scoring.ErrAwaitingBowler),
		errors.Is(err, scoring.ErrNothingToUndo),
		errors.Is(err, engine.ErrInningsCompleted),
		errors.Is(err, engine.ErrOverComplete),
		errors.Is(err, engine.ErrOverMismatch),
		errors.Is(err, engine.ErrNotLatestDelivery),
		errors.Is(err, engine.ErrNothingToUndo):
		respondError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, scoring.ErrFielderRequired),
		errors.Is(err, engine.ErrInvalidExtraType),
		errors.Is(err, engine.ErrInvalidWicketKind):
		respondError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		respondError(w, http.StatusInternalServerError, "scoring operation failed", err)
	}
}
