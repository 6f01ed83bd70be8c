package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shadowdreamer/drawwat/internal/game"
	"github.com/shadowdreamer/drawwat/internal/logging"
	"github.com/shadowdreamer/drawwat/internal/models"
	"github.com/shadowdreamer/drawwat/internal/storage"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var (
	ErrPuzzleNotFound    = errors.New("puzzle not found")
	ErrNotPuzzleCreator  = errors.New("not the puzzle creator")
	ErrInvalidPuzzle     = errors.New("invalid puzzle")
	ErrPuzzleNotExpired  = errors.New("puzzle not expired")
	ErrCreatorCannotPlay = errors.New("creator cannot play their own puzzle")
	ErrGaveUp            = errors.New("user gave up on this puzzle")
	ErrAlreadySolved     = errors.New("puzzle already solved by user")
	ErrAlreadyGivenUp    = errors.New("user already gave up on this puzzle")
	ErrEmptyGuess        = errors.New("empty guess")
)

// PuzzleService owns the puzzle lifecycle: creation, lookup, deletion,
// guesses, give-ups, and the aggregations over them. All uniqueness
// invariants are enforced by database constraints, not by read-then-write
// sequences in application code.
type PuzzleService struct {
	db       DB
	images   storage.Store
	imageURL string
	now      func() time.Time

	notifier SolveNotifier
}

// SolveNotifier is told about first solves. Delivery is best-effort.
type SolveNotifier interface {
	NotifySolved(ctx context.Context, puzzle *models.Puzzle, solver *models.User)
}

func NewPuzzleService(db DB, images storage.Store, imageBaseURL string) *PuzzleService {
	return &PuzzleService{
		db:       db,
		images:   images,
		imageURL: strings.TrimRight(imageBaseURL, "/"),
		now:      time.Now,
	}
}

// SetNotificationService wires the optional solve notifier.
func (s *PuzzleService) SetNotificationService(n SolveNotifier) {
	s.notifier = n
}

// SetClock overrides the time source. Tests use this for deterministic
// expiry and elapsed-time assertions.
func (s *PuzzleService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *PuzzleService) publicImageURL(key string) string {
	return s.imageURL + "/" + key
}

func (s *PuzzleService) CreatePuzzle(ctx context.Context, params models.CreatePuzzleParams) (*models.Puzzle, error) {
	if !models.ValidateAnswer(params.Answer) {
		return nil, fmt.Errorf("%w: answer is required", ErrInvalidPuzzle)
	}
	if strings.TrimSpace(params.ImageKey) == "" {
		return nil, fmt.Errorf("%w: image reference is required", ErrInvalidPuzzle)
	}

	puzzle := &models.Puzzle{}
	err := s.db.QueryRow(ctx,
		`INSERT INTO puzzles (user_id, image_key, answer, hint, case_sensitive, is_public, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, user_id, image_key, answer, hint, case_sensitive, is_public, expires_at, created_at`,
		params.UserID, params.ImageKey, params.Answer, params.Hint,
		params.CaseSensitive, params.IsPublic, params.ExpiresAt,
	).Scan(
		&puzzle.ID, &puzzle.UserID, &puzzle.ImageKey, &puzzle.Answer, &puzzle.Hint,
		&puzzle.CaseSensitive, &puzzle.IsPublic, &puzzle.ExpiresAt, &puzzle.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating puzzle: %w", err)
	}
	return puzzle, nil
}

func (s *PuzzleService) getPuzzle(ctx context.Context, q DBConn, puzzleID uuid.UUID) (*models.Puzzle, error) {
	puzzle := &models.Puzzle{}
	err := q.QueryRow(ctx,
		`SELECT id, user_id, image_key, answer, hint, case_sensitive, is_public, expires_at, created_at
		 FROM puzzles WHERE id = $1`,
		puzzleID,
	).Scan(
		&puzzle.ID, &puzzle.UserID, &puzzle.ImageKey, &puzzle.Answer, &puzzle.Hint,
		&puzzle.CaseSensitive, &puzzle.IsPublic, &puzzle.ExpiresAt, &puzzle.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPuzzleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading puzzle: %w", err)
	}
	return puzzle, nil
}

// GetPuzzle returns the full puzzle record, answer included. Callers that
// serve guessers must use GetPublicPuzzle instead.
func (s *PuzzleService) GetPuzzle(ctx context.Context, puzzleID uuid.UUID) (*models.Puzzle, error) {
	return s.getPuzzle(ctx, s.db, puzzleID)
}

// GetPublicPuzzle is the guesser-facing view: no answer, expiry evaluated at
// call time for display only.
func (s *PuzzleService) GetPublicPuzzle(ctx context.Context, puzzleID uuid.UUID) (*models.PublicPuzzle, error) {
	puzzle, err := s.getPuzzle(ctx, s.db, puzzleID)
	if err != nil {
		return nil, err
	}
	return &models.PublicPuzzle{
		ID:        puzzle.ID,
		ImageURL:  s.publicImageURL(puzzle.ImageKey),
		Hint:      puzzle.Hint,
		IsExpired: game.IsExpired(puzzle.ExpiresAt, s.now()),
		ExpiresAt: puzzle.ExpiresAt,
		CreatedAt: puzzle.CreatedAt,
	}, nil
}

// RevealAnswer returns the answer once the puzzle has expired.
func (s *PuzzleService) RevealAnswer(ctx context.Context, puzzleID uuid.UUID) (string, error) {
	puzzle, err := s.getPuzzle(ctx, s.db, puzzleID)
	if err != nil {
		return "", err
	}
	if !game.IsExpired(puzzle.ExpiresAt, s.now()) {
		return "", ErrPuzzleNotExpired
	}
	return puzzle.Answer, nil
}

// DeletePuzzle removes the puzzle and all dependent guess/solve/give-up rows,
// then releases the stored image. The row deletion is authoritative: a failed
// image release is logged and never propagated.
func (s *PuzzleService) DeletePuzzle(ctx context.Context, puzzleID, requesterID uuid.UUID) error {
	puzzle, err := s.getPuzzle(ctx, s.db, puzzleID)
	if err != nil {
		return err
	}
	if puzzle.UserID != requesterID {
		return ErrNotPuzzleCreator
	}

	// Dependent rows carry ON DELETE CASCADE, so one statement removes the
	// puzzle with everything hanging off it.
	tag, err := s.db.Exec(ctx, "DELETE FROM puzzles WHERE id = $1 AND user_id = $2", puzzleID, requesterID)
	if err != nil {
		return fmt.Errorf("deleting puzzle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPuzzleNotFound
	}

	if err := s.images.Delete(ctx, puzzle.ImageKey); err != nil {
		logging.Warn("Failed to release puzzle image", map[string]interface{}{
			"puzzle_id": puzzleID.String(),
			"image_key": puzzle.ImageKey,
			"error":     err.Error(),
		})
	}

	return nil
}

// ListPublicPuzzles pages through public puzzles, newest first. Guess totals
// only count guesses submitted before expiry.
func (s *PuzzleService) ListPublicPuzzles(ctx context.Context, page, pageSize int) ([]models.PuzzleSummary, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	offset := (page - 1) * pageSize

	rows, err := s.db.Query(ctx,
		`SELECT p.id, p.image_key, p.hint, p.expires_at, p.created_at,
		        (SELECT COUNT(*) FROM guesses g WHERE g.puzzle_id = p.id AND NOT g.is_after_expiry),
		        (SELECT COUNT(*) FROM guesses g WHERE g.puzzle_id = p.id AND g.is_correct AND NOT g.is_after_expiry)
		 FROM puzzles p
		 WHERE p.is_public
		 ORDER BY p.created_at DESC
		 LIMIT $1 OFFSET $2`,
		pageSize, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("listing public puzzles: %w", err)
	}
	defer rows.Close()

	return s.scanSummaries(rows, false)
}

// ListUserPuzzles returns the creator's own puzzles, answers included.
func (s *PuzzleService) ListUserPuzzles(ctx context.Context, userID uuid.UUID) ([]models.PuzzleSummary, error) {
	rows, err := s.db.Query(ctx,
		`SELECT p.id, p.image_key, p.hint, p.answer, p.expires_at, p.created_at,
		        (SELECT COUNT(*) FROM guesses g WHERE g.puzzle_id = p.id AND NOT g.is_after_expiry),
		        (SELECT COUNT(*) FROM guesses g WHERE g.puzzle_id = p.id AND g.is_correct AND NOT g.is_after_expiry)
		 FROM puzzles p
		 WHERE p.user_id = $1
		 ORDER BY p.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing user puzzles: %w", err)
	}
	defer rows.Close()

	return s.scanSummaries(rows, true)
}

func (s *PuzzleService) scanSummaries(rows Rows, withAnswer bool) ([]models.PuzzleSummary, error) {
	summaries := make([]models.PuzzleSummary, 0)
	for rows.Next() {
		var summary models.PuzzleSummary
		var imageKey string
		var err error
		if withAnswer {
			err = rows.Scan(&summary.ID, &imageKey, &summary.Hint, &summary.Answer,
				&summary.ExpiresAt, &summary.CreatedAt, &summary.TotalGuesses, &summary.CorrectGuesses)
		} else {
			err = rows.Scan(&summary.ID, &imageKey, &summary.Hint,
				&summary.ExpiresAt, &summary.CreatedAt, &summary.TotalGuesses, &summary.CorrectGuesses)
		}
		if err != nil {
			return nil, fmt.Errorf("scanning puzzle summary: %w", err)
		}
		summary.ImageURL = s.publicImageURL(imageKey)
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating puzzle summaries: %w", err)
	}
	return summaries, nil
}
