package handlers

import (
	"bytes"
	"errors"
	"image"
	"log"
	"net/http"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/google/uuid"

	"github.com/shadowdreamer/drawwat/internal/game"
	"github.com/shadowdreamer/drawwat/internal/services"
	"github.com/shadowdreamer/drawwat/internal/storage"
)

// OGImageHandler renders the link-unfurl share card for a puzzle. The card
// shows the drawing and the answer length, never the answer.
type OGImageHandler struct {
	puzzles services.PuzzleServiceInterface
	users   services.UserServiceInterface
	blobs   storage.Reader
}

func NewOGImageHandler(puzzles services.PuzzleServiceInterface, users services.UserServiceInterface, blobs storage.Reader) *OGImageHandler {
	return &OGImageHandler{puzzles: puzzles, users: users, blobs: blobs}
}

func (h *OGImageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSuffix(r.PathValue("id"), ".png")
	puzzleID, err := uuid.Parse(raw)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	puzzle, err := h.puzzles.GetPuzzle(r.Context(), puzzleID)
	if errors.Is(err, services.ErrPuzzleNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	creator, err := h.users.ResolveUsername(r.Context(), puzzle.UserID)
	if err != nil {
		creator = "someone"
	}

	solves, err := h.puzzles.Leaderboard(r.Context(), puzzleID)
	if err != nil {
		log.Printf("Error loading solves for share card: %v", err)
	}

	var drawing image.Image
	if data, err := h.blobs.Get(r.Context(), puzzle.ImageKey); err == nil {
		if decoded, _, err := image.Decode(bytes.NewReader(data)); err == nil {
			drawing = decoded
		}
	}

	pngBytes, err := services.RenderShareCardPNG(services.ShareCardParams{
		CreatorName:  creator,
		AnswerLength: game.AnswerLength(puzzle.Answer),
		SolveCount:   len(solves),
		Drawing:      drawing,
	})
	if err != nil {
		http.Error(w, "Failed to render image", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300, must-revalidate")
	w.Header().Set("X-Robots-Tag", "noindex")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pngBytes)
}
