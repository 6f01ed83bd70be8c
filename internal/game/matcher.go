// Package game holds the pure scoring rules for drawwat puzzles: character
// matching between an answer and a guess, and the expiry policy. Nothing in
// this package touches storage or the clock.
package game

import "strings"

// MatchResult describes how close a guess came to the answer.
type MatchResult struct {
	ExactMatch       bool
	CorrectChars     int
	CorrectPositions int
}

// Evaluate scores guess against answer. Both operands are lowercased first
// unless caseSensitive is set, always identically.
//
// CorrectPositions counts index-wise equal runes up to the shorter operand.
// CorrectChars is the multiset intersection: a rune occurring twice in the
// answer can be matched by at most two occurrences in the guess, so repeated
// letters never over-count. ExactMatch is plain string equality of the
// normalized operands, independent of the two counts.
func Evaluate(answer, guess string, caseSensitive bool) MatchResult {
	if !caseSensitive {
		answer = strings.ToLower(answer)
		guess = strings.ToLower(guess)
	}

	answerRunes := []rune(answer)
	guessRunes := []rune(guess)

	correctPositions := 0
	n := len(answerRunes)
	if len(guessRunes) < n {
		n = len(guessRunes)
	}
	for i := 0; i < n; i++ {
		if answerRunes[i] == guessRunes[i] {
			correctPositions++
		}
	}

	remaining := make(map[rune]int, len(answerRunes))
	for _, r := range answerRunes {
		remaining[r]++
	}
	correctChars := 0
	for _, r := range guessRunes {
		if remaining[r] > 0 {
			correctChars++
			remaining[r]--
		}
	}

	return MatchResult{
		ExactMatch:       answer == guess,
		CorrectChars:     correctChars,
		CorrectPositions: correctPositions,
	}
}

// AnswerLength is the rune count surfaced in wrong-guess hints.
func AnswerLength(answer string) int {
	return len([]rune(answer))
}
