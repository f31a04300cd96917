package question

import (
	"context"
	"strings"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty normalizes user input; anything unrecognized becomes medium.
func ParseDifficulty(s string) Difficulty {
	switch d := Difficulty(strings.ToLower(s)); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d
	default:
		return DifficultyMedium
	}
}

// Question is one multiple-choice round. CorrectAnswer is always one of
// Options; Topic names the movie the question is about so repeats can be
// excluded within a game.
type Question struct {
	Text          string
	Options       []string
	CorrectAnswer string
	Explanation   string
	Topic         string
}

// Generator produces the next question for a game. askedTopics lists movies
// already used in this game; implementations avoid them where they can.
type Generator interface {
	Next(ctx context.Context, d Difficulty, askedTopics []string) (Question, error)
}
