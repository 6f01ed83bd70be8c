package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shadowdreamer/drawwat/internal/models"
)

// GiveUp marks the user as permanently out of the running on this puzzle.
// Unreachable for the creator, for a user who already solved it, and
// idempotency is enforced by the unique constraint: losing a duplicate-insert
// race classifies as AlreadyGivenUp, never as a hard failure.
func (s *PuzzleService) GiveUp(ctx context.Context, puzzleID, userID uuid.UUID) (*models.GiveUp, error) {
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

	var solved bool
	err = tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM puzzle_solves WHERE puzzle_id = $1 AND user_id = $2)",
		puzzleID, userID,
	).Scan(&solved)
	if err != nil {
		return nil, fmt.Errorf("checking solve: %w", err)
	}
	if solved {
		return nil, ErrAlreadySolved
	}

	giveUp := &models.GiveUp{}
	err = tx.QueryRow(ctx,
		`INSERT INTO puzzle_give_ups (puzzle_id, user_id, gave_up_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (puzzle_id, user_id) DO NOTHING
		 RETURNING id, puzzle_id, user_id, gave_up_at`,
		puzzleID, userID, s.now(),
	).Scan(&giveUp.ID, &giveUp.PuzzleID, &giveUp.UserID, &giveUp.GaveUpAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// The constraint swallowed the insert: a give-up already exists.
		return nil, ErrAlreadyGivenUp
	}
	if err != nil {
		return nil, fmt.Errorf("recording give-up: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return giveUp, nil
}

// GiveUpStatus reports whether the user has given up on the puzzle.
func (s *PuzzleService) GiveUpStatus(ctx context.Context, puzzleID, userID uuid.UUID) (*models.GiveUp, error) {
	if _, err := s.getPuzzle(ctx, s.db, puzzleID); err != nil {
		return nil, err
	}

	giveUp := &models.GiveUp{}
	err := s.db.QueryRow(ctx,
		`SELECT id, puzzle_id, user_id, gave_up_at
		 FROM puzzle_give_ups
		 WHERE puzzle_id = $1 AND user_id = $2`,
		puzzleID, userID,
	).Scan(&giveUp.ID, &giveUp.PuzzleID, &giveUp.UserID, &giveUp.GaveUpAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading give-up: %w", err)
	}
	return giveUp, nil
}
