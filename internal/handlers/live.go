package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pavilion-live/pavilion/internal/summary"
	"github.com/pavilion-live/pavilion/pkg/models"
)

// GetLiveScore returns the live scorecard for a match. Served from the
// Redis mirror when warm, rebuilt from Postgres otherwise.
func (h *Handler) GetLiveScore(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	matchID := chi.URLParam(r, "matchID")

	if h.cache != nil {
		payload, err := h.cache.GetLiveScore(ctx, matchID)
		if err != nil {
			fmt.Printf("⚠️  Live score cache read failed for %s: %v\n", matchID, err)
		} else if payload != nil {
			respondJSON(w, http.StatusOK, payload)
			return
		}
	}

	match, err := h.store.GetMatch(ctx, matchID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve match", err)
		return
	}
	if match == nil {
		respondError(w, http.StatusNotFound, "match not found", nil)
		return
	}
	innings, err := h.store.CurrentInnings(ctx, matchID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve innings", err)
		return
	}
	if innings == nil {
		respondError(w, http.StatusNotFound, "match has no innings in progress", nil)
		return
	}

	payload := &models.LiveScorePayload{
		Runs:          innings.TotalRuns,
		Wickets:       innings.TotalWickets,
		Overs:         innings.TotalOvers,
		Striker:       innings.Striker,
		NonStriker:    innings.NonStriker,
		CurrentBowler: innings.CurrentBowler,
		BatterStats:   innings.BatterStats,
		BowlerStats:   innings.BowlerStats,
		FallOfWickets: innings.FallOfWickets,
	}

	if h.cache != nil {
		if err := h.cache.SetLiveScore(ctx, matchID, payload); err != nil {
			fmt.Printf("⚠️  Failed to warm live score cache for %s: %v\n", matchID, err)
		}
	}

	respondJSON(w, http.StatusOK, payload)
}

// GetMatchSummary returns the aggregated scorecard for a match
func (h *Handler) GetMatchSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	matchID := chi.URLParam(r, "matchID")

	if h.cache != nil {
		cached, err := h.cache.GetMatchSummary(ctx, matchID)
		if err != nil {
			fmt.Printf("⚠️  Summary cache read failed for %s: %v\n", matchID, err)
		} else if cached != nil {
			respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	match, err := h.store.GetMatch(ctx, matchID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve match", err)
		return
	}
	if match == nil {
		respondError(w, http.StatusNotFound, "match not found", nil)
		return
	}

	innings, err := h.store.GetInningsByMatch(ctx, matchID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve innings", err)
		return
	}

	deliveries := make(map[string][]models.Delivery, len(innings))
	for _, in := range innings {
		ds, err := h.store.GetDeliveriesByInnings(ctx, in.ID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to retrieve deliveries", err)
			return
		}
		deliveries[in.ID] = ds
	}

	s := summary.Build(match, innings, deliveries)

	// only completed matches cache their summary; live ones change every ball
	if h.cache != nil && match.Status == models.StatusCompleted {
		if err := h.cache.SetMatchSummary(ctx, matchID, s); err != nil {
			fmt.Printf("⚠️  Failed to cache summary for %s: %v\n", matchID, err)
		}
	}

	respondJSON(w, http.StatusOK, s)
}

// GetTodaysMatches lists matches scheduled for today
func (h *Handler) GetTodaysMatches(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	today := time.Now().UTC()

	if h.cache != nil {
		ids, err := h.cache.GetTodaysMatches(ctx, today)
		if err == nil && len(ids) > 0 {
			matches := make([]models.Match, 0, len(ids))
			for _, id := range ids {
				m, err := h.store.GetMatch(ctx, id)
				if err == nil && m != nil {
					matches = append(matches, *m)
				}
			}
			respondJSON(w, http.StatusOK, map[string]interface{}{
				"matches": matches,
				"count":   len(matches),
			})
			return
		}
	}

	matches, err := h.store.ListMatchesOn(ctx, today)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve matches", err)
		return
	}

	if h.cache != nil && len(matches) > 0 {
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		if err := h.cache.SetTodaysMatches(ctx, today, ids); err != nil {
			fmt.Printf("⚠️  Failed to cache today's matches: %v\n", err)
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"matches": matches,
		"count":   len(matches),
	})
}
