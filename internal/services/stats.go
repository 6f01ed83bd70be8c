package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/shadowdreamer/drawwat/internal/game"
	"github.com/shadowdreamer/drawwat/internal/models"
)

// Stats is the creator-only aggregation over a puzzle. Counts exclude
// guesses submitted after expiry; solves can only exist pre-expiry.
func (s *PuzzleService) Stats(ctx context.Context, puzzleID, requesterID uuid.UUID) (*models.PuzzleStats, error) {
	puzzle, err := s.getPuzzle(ctx, s.db, puzzleID)
	if err != nil {
		return nil, err
	}
	if puzzle.UserID != requesterID {
		return nil, ErrNotPuzzleCreator
	}

	stats := &models.PuzzleStats{
		PuzzleID:  puzzle.ID,
		Answer:    puzzle.Answer,
		IsExpired: game.IsExpired(puzzle.ExpiresAt, s.now()),
	}

	err = s.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE is_correct)
		 FROM guesses
		 WHERE puzzle_id = $1 AND NOT is_after_expiry`,
		puzzleID,
	).Scan(&stats.TotalGuesses, &stats.CorrectGuesses)
	if err != nil {
		return nil, fmt.Errorf("counting guesses: %w", err)
	}
	if stats.TotalGuesses > 0 {
		stats.AccuracyRate = float64(stats.CorrectGuesses) / float64(stats.TotalGuesses)
	}

	stats.Solves, err = s.Leaderboard(ctx, puzzleID)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// Leaderboard returns the puzzle's solves in solve order. Rank is the
// 1-based position; the serial solve id breaks solved_at ties so the
// ordering is reproducible.
func (s *PuzzleService) Leaderboard(ctx context.Context, puzzleID uuid.UUID) ([]models.SolveEntry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT ps.user_id, u.username, ps.solved_at, ps.time_to_solve
		 FROM puzzle_solves ps
		 JOIN users u ON u.id = ps.user_id
		 WHERE ps.puzzle_id = $1
		 ORDER BY ps.solved_at ASC, ps.id ASC`,
		puzzleID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]models.SolveEntry, 0)
	for rows.Next() {
		var entry models.SolveEntry
		if err := rows.Scan(&entry.UserID, &entry.Username, &entry.SolvedAt, &entry.TimeToSolve); err != nil {
			return nil, fmt.Errorf("scanning solve: %w", err)
		}
		entry.Rank = len(entries) + 1
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating solves: %w", err)
	}
	return entries, nil
}

// WrongGuessFrequency aggregates wrong guess texts by popularity. After-expiry
// guesses are excluded, matching every other statistic on the puzzle.
func (s *PuzzleService) WrongGuessFrequency(ctx context.Context, puzzleID uuid.UUID) ([]models.WrongGuessCount, error) {
	if _, err := s.getPuzzle(ctx, s.db, puzzleID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT guess_text, COUNT(*) as count
		 FROM guesses
		 WHERE puzzle_id = $1 AND NOT is_correct AND NOT is_after_expiry
		 GROUP BY guess_text
		 ORDER BY count DESC, guess_text ASC`,
		puzzleID,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregating wrong guesses: %w", err)
	}
	defer rows.Close()

	counts := make([]models.WrongGuessCount, 0)
	for rows.Next() {
		var wc models.WrongGuessCount
		if err := rows.Scan(&wc.GuessText, &wc.Count); err != nil {
			return nil, fmt.Errorf("scanning wrong guess: %w", err)
		}
		counts = append(counts, wc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating wrong guesses: %w", err)
	}
	return counts, nil
}
