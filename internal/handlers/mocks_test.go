package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/shadowdreamer/drawwat/internal/models"
)

type mockPuzzleService struct {
	CreatePuzzleFunc        func(ctx context.Context, params models.CreatePuzzleParams) (*models.Puzzle, error)
	GetPuzzleFunc           func(ctx context.Context, puzzleID uuid.UUID) (*models.Puzzle, error)
	GetPublicPuzzleFunc     func(ctx context.Context, puzzleID uuid.UUID) (*models.PublicPuzzle, error)
	RevealAnswerFunc        func(ctx context.Context, puzzleID uuid.UUID) (string, error)
	DeletePuzzleFunc        func(ctx context.Context, puzzleID, requesterID uuid.UUID) error
	ListPublicPuzzlesFunc   func(ctx context.Context, page, pageSize int) ([]models.PuzzleSummary, error)
	ListUserPuzzlesFunc     func(ctx context.Context, userID uuid.UUID) ([]models.PuzzleSummary, error)
	SubmitGuessFunc         func(ctx context.Context, puzzleID, userID uuid.UUID, guessText string) (*models.GuessOutcome, error)
	ListUserGuessesFunc     func(ctx context.Context, puzzleID, userID uuid.UUID) ([]models.Guess, *models.UserGuessStats, error)
	GiveUpFunc              func(ctx context.Context, puzzleID, userID uuid.UUID) (*models.GiveUp, error)
	GiveUpStatusFunc        func(ctx context.Context, puzzleID, userID uuid.UUID) (*models.GiveUp, error)
	StatsFunc               func(ctx context.Context, puzzleID, requesterID uuid.UUID) (*models.PuzzleStats, error)
	LeaderboardFunc         func(ctx context.Context, puzzleID uuid.UUID) ([]models.SolveEntry, error)
	WrongGuessFrequencyFunc func(ctx context.Context, puzzleID uuid.UUID) ([]models.WrongGuessCount, error)
}

func (m *mockPuzzleService) CreatePuzzle(ctx context.Context, params models.CreatePuzzleParams) (*models.Puzzle, error) {
	if m.CreatePuzzleFunc == nil {
		return nil, fmt.Errorf("CreatePuzzle not mocked")
	}
	return m.CreatePuzzleFunc(ctx, params)
}

func (m *mockPuzzleService) GetPuzzle(ctx context.Context, puzzleID uuid.UUID) (*models.Puzzle, error) {
	if m.GetPuzzleFunc == nil {
		return nil, fmt.Errorf("GetPuzzle not mocked")
	}
	return m.GetPuzzleFunc(ctx, puzzleID)
}

func (m *mockPuzzleService) GetPublicPuzzle(ctx context.Context, puzzleID uuid.UUID) (*models.PublicPuzzle, error) {
	if m.GetPublicPuzzleFunc == nil {
		return nil, fmt.Errorf("GetPublicPuzzle not mocked")
	}
	return m.GetPublicPuzzleFunc(ctx, puzzleID)
}

func (m *mockPuzzleService) RevealAnswer(ctx context.Context, puzzleID uuid.UUID) (string, error) {
	if m.RevealAnswerFunc == nil {
		return "", fmt.Errorf("RevealAnswer not mocked")
	}
	return m.RevealAnswerFunc(ctx, puzzleID)
}

func (m *mockPuzzleService) DeletePuzzle(ctx context.Context, puzzleID, requesterID uuid.UUID) error {
	if m.DeletePuzzleFunc == nil {
		return fmt.Errorf("DeletePuzzle not mocked")
	}
	return m.DeletePuzzleFunc(ctx, puzzleID, requesterID)
}

func (m *mockPuzzleService) ListPublicPuzzles(ctx context.Context, page, pageSize int) ([]models.PuzzleSummary, error) {
	if m.ListPublicPuzzlesFunc == nil {
		return nil, fmt.Errorf("ListPublicPuzzles not mocked")
	}
	return m.ListPublicPuzzlesFunc(ctx, page, pageSize)
}

func (m *mockPuzzleService) ListUserPuzzles(ctx context.Context, userID uuid.UUID) ([]models.PuzzleSummary, error) {
	if m.ListUserPuzzlesFunc == nil {
		return nil, fmt.Errorf("ListUserPuzzles not mocked")
	}
	return m.ListUserPuzzlesFunc(ctx, userID)
}

func (m *mockPuzzleService) SubmitGuess(ctx context.Context, puzzleID, userID uuid.UUID, guessText string) (*models.GuessOutcome, error) {
	if m.SubmitGuessFunc == nil {
		return nil, fmt.Errorf("SubmitGuess not mocked")
	}
	return m.SubmitGuessFunc(ctx, puzzleID, userID, guessText)
}

func (m *mockPuzzleService) ListUserGuesses(ctx context.Context, puzzleID, userID uuid.UUID) ([]models.Guess, *models.UserGuessStats, error) {
	if m.ListUserGuessesFunc == nil {
		return nil, nil, fmt.Errorf("ListUserGuesses not mocked")
	}
	return m.ListUserGuessesFunc(ctx, puzzleID, userID)
}

func (m *mockPuzzleService) GiveUp(ctx context.Context, puzzleID, userID uuid.UUID) (*models.GiveUp, error) {
	if m.GiveUpFunc == nil {
		return nil, fmt.Errorf("GiveUp not mocked")
	}
	return m.GiveUpFunc(ctx, puzzleID, userID)
}

func (m *mockPuzzleService) GiveUpStatus(ctx context.Context, puzzleID, userID uuid.UUID) (*models.GiveUp, error) {
	if m.GiveUpStatusFunc == nil {
		return nil, fmt.Errorf("GiveUpStatus not mocked")
	}
	return m.GiveUpStatusFunc(ctx, puzzleID, userID)
}

func (m *mockPuzzleService) Stats(ctx context.Context, puzzleID, requesterID uuid.UUID) (*models.PuzzleStats, error) {
	if m.StatsFunc == nil {
		return nil, fmt.Errorf("Stats not mocked")
	}
	return m.StatsFunc(ctx, puzzleID, requesterID)
}

func (m *mockPuzzleService) Leaderboard(ctx context.Context, puzzleID uuid.UUID) ([]models.SolveEntry, error) {
	if m.LeaderboardFunc == nil {
		return nil, fmt.Errorf("Leaderboard not mocked")
	}
	return m.LeaderboardFunc(ctx, puzzleID)
}

func (m *mockPuzzleService) WrongGuessFrequency(ctx context.Context, puzzleID uuid.UUID) ([]models.WrongGuessCount, error) {
	if m.WrongGuessFrequencyFunc == nil {
		return nil, fmt.Errorf("WrongGuessFrequency not mocked")
	}
	return m.WrongGuessFrequencyFunc(ctx, puzzleID)
}

type mockUserService struct {
	UpsertFromProviderFunc func(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByIDFunc            func(ctx context.Context, userID uuid.UUID) (*models.User, error)
	ResolveUsernameFunc    func(ctx context.Context, userID uuid.UUID) (string, error)
}

func (m *mockUserService) UpsertFromProvider(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	if m.UpsertFromProviderFunc == nil {
		return nil, fmt.Errorf("UpsertFromProvider not mocked")
	}
	return m.UpsertFromProviderFunc(ctx, params)
}

func (m *mockUserService) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if m.GetByIDFunc == nil {
		return nil, fmt.Errorf("GetByID not mocked")
	}
	return m.GetByIDFunc(ctx, userID)
}

func (m *mockUserService) ResolveUsername(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.ResolveUsernameFunc == nil {
		return "", fmt.Errorf("ResolveUsername not mocked")
	}
	return m.ResolveUsernameFunc(ctx, userID)
}

type mockAuthService struct {
	CreateSessionFunc func(ctx context.Context, userID uuid.UUID) (string, error)
	GetSessionFunc    func(ctx context.Context, token string) (uuid.UUID, error)
	DeleteSessionFunc func(ctx context.Context, token string) error
}

func (m *mockAuthService) CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.CreateSessionFunc == nil {
		return "", fmt.Errorf("CreateSession not mocked")
	}
	return m.CreateSessionFunc(ctx, userID)
}

func (m *mockAuthService) GetSession(ctx context.Context, token string) (uuid.UUID, error) {
	if m.GetSessionFunc == nil {
		return uuid.Nil, fmt.Errorf("GetSession not mocked")
	}
	return m.GetSessionFunc(ctx, token)
}

func (m *mockAuthService) DeleteSession(ctx context.Context, token string) error {
	if m.DeleteSessionFunc == nil {
		return fmt.Errorf("DeleteSession not mocked")
	}
	return m.DeleteSessionFunc(ctx, token)
}

func assertErrorResponse(t *testing.T, rr *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected status %d, got %d", status, rr.Code)
	}
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Error != message {
		t.Fatalf("expected error %q, got %q", message, resp.Error)
	}
}
