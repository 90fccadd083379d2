package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pavilion-live/pavilion/pkg/models"
)

// CreateTeam registers a new team
func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req struct {
		Name      string `json:"name"`
		ShortName string `json:"short_name"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	team := &models.Team{
		ID:        uuid.New().String(),
		Name:      req.Name,
		ShortName: req.ShortName,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.CreateTeam(ctx, team); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create team", err)
		return
	}

	respondJSON(w, http.StatusCreated, team)
}

// GetTeams lists all teams
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	teams, err := h.store.ListTeams(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve teams", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"teams": teams,
		"count": len(teams),
	})
}

// GetTeam retrieves a single team by ID
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	teamID := chi.URLParam(r, "teamID")
	team, err := h.store.GetTeam(ctx, teamID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve team", err)
		return
	}
	if team == nil {
		respondError(w, http.StatusNotFound, "team not found", nil)
		return
	}

	respondJSON(w, http.StatusOK, team)
}

// CreatePlayer registers a player for a team
func (h *Handler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	teamID := chi.URLParam(r, "teamID")
	team, err := h.store.GetTeam(ctx, teamID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve team", err)
		return
	}
	if team == nil {
		respondError(w, http.StatusNotFound, "team not found", nil)
		return
	}

	var req struct {
		Name string `json:"name"`
		Role string `json:"role"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	player := &models.Player{
		ID:        uuid.New().String(),
		TeamID:    teamID,
		Name:      req.Name,
		Role:      req.Role,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.CreatePlayer(ctx, player); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create player", err)
		return
	}

	respondJSON(w, http.StatusCreated, player)
}

// GetPlayers lists a team's players
func (h *Handler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	teamID := chi.URLParam(r, "teamID")
	players, err := h.store.ListPlayers(ctx, teamID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve players", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"players": players,
		"count":   len(players),
	})
}
