package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/shadowdreamer/drawwat/internal/game"
	"github.com/shadowdreamer/drawwat/internal/logging"
	"github.com/shadowdreamer/drawwat/internal/models"
)

// SubmitGuess runs the guess state machine for one (puzzle, user) pair:
//
//  1. the creator may never guess on their own puzzle
//  2. a user who gave up is permanently barred
//  3. every surviving submission persists exactly one guess row, with the
//     match result and the after-expiry flag computed at this instant
//  4. an exact match before expiry records the user's solve at most once;
//     the unique constraint on (puzzle_id, user_id) decides races
//
// The whole sequence runs in one transaction serialized per user, so a
// concurrent give-up cannot interleave with the solve check.
func (s *PuzzleService) SubmitGuess(ctx context.Context, puzzleID, userID uuid.UUID, guessText string) (*models.GuessOutcome, error) {
	if guessText == "" {
		return nil, ErrEmptyGuess
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // Rollback is a no-op after commit

	if err := lockUserForUpdate(ctx, tx, userID); err != nil {
		return nil, err
	}

	puzzle, err := s.getPuzzle(ctx, tx, puzzleID)
	if err != nil {
		return nil, err
	}
	if puzzle.UserID == userID {
		return nil, ErrCreatorCannotPlay
	}

	var gaveUp bool
	err = tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM puzzle_give_ups WHERE puzzle_id = $1 AND user_id = $2)",
		puzzleID, userID,
	).Scan(&gaveUp)
	if err != nil {
		return nil, fmt.Errorf("checking give-up: %w", err)
	}
	if gaveUp {
		return nil, ErrGaveUp
	}

	now := s.now()
	expired := game.IsExpired(puzzle.ExpiresAt, now)
	match := game.Evaluate(puzzle.Answer, guessText, puzzle.CaseSensitive)

	_, err = tx.Exec(ctx,
		`INSERT INTO guesses (puzzle_id, user_id, guess_text, is_correct, correct_chars, correct_positions, is_after_expiry, guessed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		puzzleID, userID, guessText, match.ExactMatch,
		match.CorrectChars, match.CorrectPositions, expired, now,
	)
	if err != nil {
		return nil, fmt.Errorf("recording guess: %w", err)
	}

	outcome := &models.GuessOutcome{
		IsCorrect: match.ExactMatch,
		IsExpired: expired,
		IsCounted: !expired,
	}

	if match.ExactMatch {
		outcome.CorrectAnswer = puzzle.Answer
		if !expired {
			timeToSolve := int64(now.Sub(puzzle.CreatedAt).Seconds())
			tag, err := tx.Exec(ctx,
				`INSERT INTO puzzle_solves (puzzle_id, user_id, solved_at, time_to_solve)
				 VALUES ($1, $2, $3, $4)
				 ON CONFLICT (puzzle_id, user_id) DO NOTHING`,
				puzzleID, userID, now, timeToSolve,
			)
			if err != nil {
				return nil, fmt.Errorf("recording solve: %w", err)
			}
			if tag.RowsAffected() > 0 {
				outcome.NewSolve = true
				outcome.TimeToSolve = timeToSolve
			}
		}
	} else {
		outcome.Hint = &models.GuessHint{
			CorrectChars:     match.CorrectChars,
			CorrectPositions: match.CorrectPositions,
			AnswerLength:     game.AnswerLength(puzzle.Answer),
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	if outcome.NewSolve && s.notifier != nil {
		s.notifySolved(ctx, puzzle, userID)
	}

	return outcome, nil
}

func (s *PuzzleService) notifySolved(ctx context.Context, puzzle *models.Puzzle, solverID uuid.UUID) {
	solver := &models.User{ID: solverID}
	err := s.db.QueryRow(ctx,
		"SELECT id, provider, provider_user_id, username, avatar_url, email, created_at FROM users WHERE id = $1",
		solverID,
	).Scan(&solver.ID, &solver.Provider, &solver.ProviderUserID, &solver.Username,
		&solver.AvatarURL, &solver.Email, &solver.CreatedAt)
	if err != nil {
		logging.Warn("Failed to load solver for notification", map[string]interface{}{
			"user_id": solverID.String(),
			"error":   err.Error(),
		})
		return
	}
	s.notifier.NotifySolved(ctx, puzzle, solver)
}

// ListUserGuesses returns the caller's own guess history on one puzzle,
// newest first, with their personal totals.
func (s *PuzzleService) ListUserGuesses(ctx context.Context, puzzleID, userID uuid.UUID) ([]models.Guess, *models.UserGuessStats, error) {
	if _, err := s.getPuzzle(ctx, s.db, puzzleID); err != nil {
		return nil, nil, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, puzzle_id, user_id, guess_text, is_correct, correct_chars, correct_positions, is_after_expiry, guessed_at
		 FROM guesses
		 WHERE puzzle_id = $1 AND user_id = $2
		 ORDER BY guessed_at DESC`,
		puzzleID, userID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("listing guesses: %w", err)
	}
	defer rows.Close()

	guesses := make([]models.Guess, 0)
	for rows.Next() {
		var g models.Guess
		if err := rows.Scan(&g.ID, &g.PuzzleID, &g.UserID, &g.GuessText, &g.IsCorrect,
			&g.CorrectChars, &g.CorrectPositions, &g.IsAfterExpiry, &g.GuessedAt); err != nil {
			return nil, nil, fmt.Errorf("scanning guess: %w", err)
		}
		guesses = append(guesses, g)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating guesses: %w", err)
	}

	stats := &models.UserGuessStats{}
	err = s.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE is_correct AND NOT is_after_expiry),
		        COUNT(*) FILTER (WHERE NOT is_after_expiry)
		 FROM guesses
		 WHERE puzzle_id = $1 AND user_id = $2`,
		puzzleID, userID,
	).Scan(&stats.TotalCount, &stats.CorrectCount, &stats.CountedCount)
	if err != nil {
		return nil, nil, fmt.Errorf("counting guesses: %w", err)
	}

	return guesses, stats, nil
}
