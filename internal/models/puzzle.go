package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxAnswerLength = 500
	MaxHintLength   = 500
	MaxGuessLength  = 500

	// DefaultExpirySeconds is applied when a creator does not choose an
	// expiry window. Zero means the puzzle never expires.
	DefaultExpirySeconds = 14 * 24 * 60 * 60
)

type Puzzle struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	ImageKey      string     `json:"-"`
	Answer        string     `json:"-"`
	Hint          *string    `json:"hint,omitempty"`
	CaseSensitive bool       `json:"case_sensitive"`
	IsPublic      bool       `json:"is_public"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// PublicPuzzle is the view served to guessers: the answer is withheld and the
// image is exposed as a URL derived from the opaque storage key.
type PublicPuzzle struct {
	ID        uuid.UUID  `json:"id"`
	ImageURL  string     `json:"image_url"`
	Hint      *string    `json:"hint,omitempty"`
	IsExpired bool       `json:"is_expired"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type CreatePuzzleParams struct {
	UserID        uuid.UUID
	ImageKey      string
	Answer        string
	Hint          *string
	CaseSensitive bool
	IsPublic      bool
	ExpiresAt     *time.Time
}

func ValidateAnswer(answer string) bool {
	answer = strings.TrimSpace(answer)
	return answer != "" && utf8.RuneCountInString(answer) <= MaxAnswerLength
}

type Guess struct {
	ID               uuid.UUID `json:"id"`
	PuzzleID         uuid.UUID `json:"puzzle_id"`
	UserID           uuid.UUID `json:"user_id"`
	GuessText        string    `json:"guess_text"`
	IsCorrect        bool      `json:"is_correct"`
	CorrectChars     int       `json:"correct_chars"`
	CorrectPositions int       `json:"correct_positions"`
	IsAfterExpiry    bool      `json:"is_after_expiry"`
	GuessedAt        time.Time `json:"guessed_at"`
}

type Solve struct {
	ID          int64     `json:"-"`
	PuzzleID    uuid.UUID `json:"puzzle_id"`
	UserID      uuid.UUID `json:"user_id"`
	SolvedAt    time.Time `json:"solved_at"`
	TimeToSolve int64     `json:"time_to_solve"`
}

type GiveUp struct {
	ID       int64     `json:"-"`
	PuzzleID uuid.UUID `json:"puzzle_id"`
	UserID   uuid.UUID `json:"user_id"`
	GaveUpAt time.Time `json:"gave_up_at"`
}

// GuessHint is returned on wrong guesses. It never carries the answer itself,
// only how close the guess came and how long the answer is.
type GuessHint struct {
	CorrectChars     int `json:"correct_chars"`
	CorrectPositions int `json:"correct_positions"`
	AnswerLength     int `json:"answer_length"`
}

// GuessOutcome is the result of one guess submission.
type GuessOutcome struct {
	IsCorrect     bool
	IsExpired     bool
	IsCounted     bool
	NewSolve      bool
	CorrectAnswer string // set only when IsCorrect
	TimeToSolve   int64  // set only when NewSolve
	Hint          *GuessHint
}

type SolveEntry struct {
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	SolvedAt    time.Time `json:"solved_at"`
	TimeToSolve int64     `json:"time_to_solve"`
	Rank        int       `json:"rank"`
}

// PuzzleStats is the creator-only aggregation. All counts exclude guesses
// submitted after expiry.
type PuzzleStats struct {
	PuzzleID       uuid.UUID    `json:"id"`
	Answer         string       `json:"answer"`
	TotalGuesses   int          `json:"total_guesses"`
	CorrectGuesses int          `json:"correct_guesses"`
	AccuracyRate   float64      `json:"accuracy_rate"`
	IsExpired      bool         `json:"is_expired"`
	Solves         []SolveEntry `json:"solves"`
}

// UserGuessStats accompanies a user's own guess history on one puzzle.
type UserGuessStats struct {
	TotalCount   int `json:"total_count"`
	CorrectCount int `json:"correct_count"`
	CountedCount int `json:"counted_count"`
}

// WrongGuessCount is one entry of the wrong-answer frequency view.
type WrongGuessCount struct {
	GuessText string `json:"guess_text"`
	Count     int    `json:"count"`
}

// PuzzleSummary is a puzzle row with counted guess totals, used for the
// public listing and the creator's own puzzle list.
type PuzzleSummary struct {
	ID             uuid.UUID  `json:"id"`
	ImageURL       string     `json:"image_url"`
	Hint           *string    `json:"hint,omitempty"`
	Answer         string     `json:"answer,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	TotalGuesses   int        `json:"total_guesses"`
	CorrectGuesses int        `json:"correct_guesses"`
}
