package handlers

import (
	"log"
	"net/http"

	"github.com/shadowdreamer/drawwat/internal/models"
	"github.com/shadowdreamer/drawwat/internal/services"
)

type UserHandler struct {
	puzzles services.PuzzleServiceInterface
}

func NewUserHandler(puzzles services.PuzzleServiceInterface) *UserHandler {
	return &UserHandler{puzzles: puzzles}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type UserPuzzlesResponse struct {
	Puzzles []models.PuzzleSummary `json:"puzzles"`
}

func (h *UserHandler) MyPuzzles(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	summaries, err := h.puzzles.ListUserPuzzles(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error listing user puzzles: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, UserPuzzlesResponse{Puzzles: summaries})
}
