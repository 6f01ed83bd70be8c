package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/shadowdreamer/drawwat/internal/models"
	"github.com/shadowdreamer/drawwat/internal/services"
	"github.com/shadowdreamer/drawwat/internal/storage"
)

type PuzzleHandler struct {
	puzzles services.PuzzleServiceInterface
	images  storage.Store
	now     func() time.Time
}

func NewPuzzleHandler(puzzles services.PuzzleServiceInterface, images storage.Store) *PuzzleHandler {
	return &PuzzleHandler{puzzles: puzzles, images: images, now: time.Now}
}

type CreatePuzzleRequest struct {
	Image         string  `json:"image"`
	Answer        string  `json:"answer"`
	Hint          *string `json:"hint,omitempty"`
	CaseSensitive bool    `json:"case_sensitive"`
	IsPublic      bool    `json:"is_public"`
	// ExpiresIn is seconds from now; nil applies the default window and
	// zero means the puzzle never expires.
	ExpiresIn *int64 `json:"expires_in,omitempty"`
}

func (h *PuzzleHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreatePuzzleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !models.ValidateAnswer(req.Answer) {
		writeError(w, http.StatusBadRequest, "Answer is required and must be at most 500 characters")
		return
	}

	data, contentType, err := storage.DecodeImageDataURL(req.Image)
	if errors.Is(err, storage.ErrInvalidImageData) {
		writeError(w, http.StatusBadRequest, "Image must be a base64 image data URL")
		return
	}
	if err != nil {
		log.Printf("Error decoding puzzle image: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	key, err := h.images.Put(r.Context(), data, contentType)
	if err != nil {
		log.Printf("Error storing puzzle image: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var expiresAt *time.Time
	expiresIn := int64(models.DefaultExpirySeconds)
	if req.ExpiresIn != nil {
		expiresIn = *req.ExpiresIn
	}
	if expiresIn < 0 {
		writeError(w, http.StatusBadRequest, "expires_in must not be negative")
		return
	}
	if expiresIn > 0 {
		t := h.now().Add(time.Duration(expiresIn) * time.Second)
		expiresAt = &t
	}

	puzzle, err := h.puzzles.CreatePuzzle(r.Context(), models.CreatePuzzleParams{
		UserID:        user.ID,
		ImageKey:      key,
		Answer:        req.Answer,
		Hint:          req.Hint,
		CaseSensitive: req.CaseSensitive,
		IsPublic:      req.IsPublic,
		ExpiresAt:     expiresAt,
	})
	if errors.Is(err, services.ErrInvalidPuzzle) {
		writeError(w, http.StatusBadRequest, "Invalid puzzle")
		return
	}
	if err != nil {
		log.Printf("Error creating puzzle: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, puzzle)
}

func (h *PuzzleHandler) Get(w http.ResponseWriter, r *http.Request) {
	puzzleID, ok := puzzleIDFromPath(w, r)
	if !ok {
		return
	}

	puzzle, err := h.puzzles.GetPublicPuzzle(r.Context(), puzzleID)
	if errors.Is(err, services.ErrPuzzleNotFound) {
		writeError(w, http.StatusNotFound, "Puzzle not found")
		return
	}
	if err != nil {
		log.Printf("Error loading puzzle: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, puzzle)
}

type PuzzleListResponse struct {
	Puzzles []models.PuzzleSummary `json:"puzzles"`
	Page    int                    `json:"page"`
}

func (h *PuzzleHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if page < 1 {
		page = 1
	}

	summaries, err := h.puzzles.ListPublicPuzzles(r.Context(), page, pageSize)
	if err != nil {
		log.Printf("Error listing puzzles: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, PuzzleListResponse{Puzzles: summaries, Page: page})
}

func (h *PuzzleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	puzzleID, ok := puzzleIDFromPath(w, r)
	if !ok {
		return
	}

	err := h.puzzles.DeletePuzzle(r.Context(), puzzleID, user.ID)
	switch {
	case errors.Is(err, services.ErrPuzzleNotFound):
		writeError(w, http.StatusNotFound, "Puzzle not found")
	case errors.Is(err, services.ErrNotPuzzleCreator):
		writeError(w, http.StatusForbidden, "Only the creator can delete a puzzle")
	case err != nil:
		log.Printf("Error deleting puzzle: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Puzzle deleted"})
	}
}

type GuessRequest struct {
	Guess string `json:"guess"`
}

type GuessResponse struct {
	IsCorrect     bool              `json:"is_correct"`
	IsExpired     bool              `json:"is_expired"`
	IsCounted     bool              `json:"is_counted"`
	CorrectAnswer string            `json:"correct_answer,omitempty"`
	TimeToSolve   *int64            `json:"time_to_solve,omitempty"`
	Hint          *models.GuessHint `json:"hint,omitempty"`
}

func (h *PuzzleHandler) Guess(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	puzzleID, ok := puzzleIDFromPath(w, r)
	if !ok {
		return
	}

	var req GuessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	outcome, err := h.puzzles.SubmitGuess(r.Context(), puzzleID, user.ID, req.Guess)
	switch {
	case errors.Is(err, services.ErrEmptyGuess):
		writeError(w, http.StatusBadRequest, "Guess must not be empty")
		return
	case errors.Is(err, services.ErrPuzzleNotFound):
		writeError(w, http.StatusNotFound, "Puzzle not found")
		return
	case errors.Is(err, services.ErrCreatorCannotPlay):
		writeError(w, http.StatusForbidden, "Creators cannot guess on their own puzzle")
		return
	case errors.Is(err, services.ErrGaveUp):
		writeError(w, http.StatusForbidden, "You gave up on this puzzle")
		return
	case err != nil:
		log.Printf("Error submitting guess: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp := GuessResponse{
		IsCorrect:     outcome.IsCorrect,
		IsExpired:     outcome.IsExpired,
		IsCounted:     outcome.IsCounted,
		CorrectAnswer: outcome.CorrectAnswer,
		Hint:          outcome.Hint,
	}
	if outcome.NewSolve {
		resp.TimeToSolve = &outcome.TimeToSolve
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PuzzleHandler) GiveUp(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	puzzleID, ok := puzzleIDFromPath(w, r)
	if !ok {
		return
	}

	giveUp, err := h.puzzles.GiveUp(r.Context(), puzzleID, user.ID)
	switch {
	case errors.Is(err, services.ErrPuzzleNotFound):
		writeError(w, http.StatusNotFound, "Puzzle not found")
	case errors.Is(err, services.ErrCreatorCannotPlay):
		writeError(w, http.StatusForbidden, "Creators cannot give up on their own puzzle")
	case errors.Is(err, services.ErrAlreadySolved):
		writeError(w, http.StatusConflict, "Puzzle already solved")
	case errors.Is(err, services.ErrAlreadyGivenUp):
		writeError(w, http.StatusConflict, "Already gave up")
	case err != nil:
		log.Printf("Error recording give-up: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	default:
		writeJSON(w, http.StatusOK, giveUp)
	}
}

type GiveUpStatusResponse struct {
	GaveUp bool           `json:"gave_up"`
	GiveUp *models.GiveUp `json:"give_up,omitempty"`
}

func (h *PuzzleHandler) GiveUpStatus(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	puzzleID, ok := puzzleIDFromPath(w, r)
	if !ok {
		return
	}

	giveUp, err := h.puzzles.GiveUpStatus(r.Context(), puzzleID, user.ID)
	if errors.Is(err, services.ErrPuzzleNotFound) {
		writeError(w, http.StatusNotFound, "Puzzle not found")
		return
	}
	if err != nil {
		log.Printf("Error loading give-up status: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, GiveUpStatusResponse{GaveUp: giveUp != nil, GiveUp: giveUp})
}

type GuessHistoryResponse struct {
	Guesses []models.Guess         `json:"guesses"`
	Stats   *models.UserGuessStats `json:"stats"`
}

func (h *PuzzleHandler) Guesses(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	puzzleID, ok := puzzleIDFromPath(w, r)
	if !ok {
		return
	}

	guesses, stats, err := h.puzzles.ListUserGuesses(r.Context(), puzzleID, user.ID)
	if errors.Is(err, services.ErrPuzzleNotFound) {
		writeError(w, http.StatusNotFound, "Puzzle not found")
		return
	}
	if err != nil {
		log.Printf("Error listing guesses: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, GuessHistoryResponse{Guesses: guesses, Stats: stats})
}

func (h *PuzzleHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	puzzleID, ok := puzzleIDFromPath(w, r)
	if !ok {
		return
	}

	stats, err := h.puzzles.Stats(r.Context(), puzzleID, user.ID)
	switch {
	case errors.Is(err, services.ErrPuzzleNotFound):
		writeError(w, http.StatusNotFound, "Puzzle not found")
	case errors.Is(err, services.ErrNotPuzzleCreator):
		writeError(w, http.StatusForbidden, "Only the creator can view puzzle stats")
	case err != nil:
		log.Printf("Error loading stats: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	default:
		writeJSON(w, http.StatusOK, stats)
	}
}

type LeaderboardResponse struct {
	Solves []models.SolveEntry `json:"solves"`
}

func (h *PuzzleHandler) Solves(w http.ResponseWriter, r *http.Request) {
	puzzleID, ok := puzzleIDFromPath(w, r)
	if !ok {
		return
	}

	entries, err := h.puzzles.Leaderboard(r.Context(), puzzleID)
	if err != nil {
		log.Printf("Error loading leaderboard: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, LeaderboardResponse{Solves: entries})
}

type WrongGuessesResponse struct {
	WrongGuesses []models.WrongGuessCount `json:"wrong_guesses"`
}

func (h *PuzzleHandler) WrongGuesses(w http.ResponseWriter, r *http.Request) {
	puzzleID, ok := puzzleIDFromPath(w, r)
	if !ok {
		return
	}

	counts, err := h.puzzles.WrongGuessFrequency(r.Context(), puzzleID)
	if errors.Is(err, services.ErrPuzzleNotFound) {
		writeError(w, http.StatusNotFound, "Puzzle not found")
		return
	}
	if err != nil {
		log.Printf("Error aggregating wrong guesses: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, WrongGuessesResponse{WrongGuesses: counts})
}

type AnswerResponse struct {
	Answer string `json:"answer"`
}

func (h *PuzzleHandler) Answer(w http.ResponseWriter, r *http.Request) {
	puzzleID, ok := puzzleIDFromPath(w, r)
	if !ok {
		return
	}

	answer, err := h.puzzles.RevealAnswer(r.Context(), puzzleID)
	switch {
	case errors.Is(err, services.ErrPuzzleNotFound):
		writeError(w, http.StatusNotFound, "Puzzle not found")
	case errors.Is(err, services.ErrPuzzleNotExpired):
		writeError(w, http.StatusForbidden, "Answer is revealed once the puzzle expires")
	case err != nil:
		log.Printf("Error revealing answer: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	default:
		writeJSON(w, http.StatusOK, AnswerResponse{Answer: answer})
	}
}

func puzzleIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	puzzleID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid puzzle id")
		return uuid.Nil, false
	}
	return puzzleID, true
}
