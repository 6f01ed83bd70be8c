package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/shadowdreamer/drawwat/internal/models"
)

// PuzzleServiceInterface is the handler-facing surface of PuzzleService.
type PuzzleServiceInterface interface {
	CreatePuzzle(ctx context.Context, params models.CreatePuzzleParams) (*models.Puzzle, error)
	GetPuzzle(ctx context.Context, puzzleID uuid.UUID) (*models.Puzzle, error)
	GetPublicPuzzle(ctx context.Context, puzzleID uuid.UUID) (*models.PublicPuzzle, error)
	RevealAnswer(ctx context.Context, puzzleID uuid.UUID) (string, error)
	DeletePuzzle(ctx context.Context, puzzleID, requesterID uuid.UUID) error
	ListPublicPuzzles(ctx context.Context, page, pageSize int) ([]models.PuzzleSummary, error)
	ListUserPuzzles(ctx context.Context, userID uuid.UUID) ([]models.PuzzleSummary, error)
	SubmitGuess(ctx context.Context, puzzleID, userID uuid.UUID, guessText string) (*models.GuessOutcome, error)
	ListUserGuesses(ctx context.Context, puzzleID, userID uuid.UUID) ([]models.Guess, *models.UserGuessStats, error)
	GiveUp(ctx context.Context, puzzleID, userID uuid.UUID) (*models.GiveUp, error)
	GiveUpStatus(ctx context.Context, puzzleID, userID uuid.UUID) (*models.GiveUp, error)
	Stats(ctx context.Context, puzzleID, requesterID uuid.UUID) (*models.PuzzleStats, error)
	Leaderboard(ctx context.Context, puzzleID uuid.UUID) ([]models.SolveEntry, error)
	WrongGuessFrequency(ctx context.Context, puzzleID uuid.UUID) ([]models.WrongGuessCount, error)
}

type UserServiceInterface interface {
	UpsertFromProvider(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	ResolveUsername(ctx context.Context, userID uuid.UUID) (string, error)
}

type AuthServiceInterface interface {
	CreateSession(ctx context.Context, userID uuid.UUID) (string, error)
	GetSession(ctx context.Context, token string) (uuid.UUID, error)
	DeleteSession(ctx context.Context, token string) error
}

var (
	_ PuzzleServiceInterface = (*PuzzleService)(nil)
	_ UserServiceInterface   = (*UserService)(nil)
	_ AuthServiceInterface   = (*AuthService)(nil)
)
