package domain

import (
	"time"
)

// Profile is the whole per-user record: identity, credential, team
// membership, point total and the user's active competitive quizzes.
// Stores read and replace it as a unit.
type Profile struct {
	// Name is the unique user identifier, immutable after sign-up.
	Name string
	// PasswordHash is a bcrypt hash, never the clear password.
	PasswordHash string
	// APIKey is the opaque credential issued at sign-up.
	APIKey string
	// Team is one of the fixed team names, lowercased, immutable.
	Team string
	// Points only ever grows; every correct answer adds 1.
	Points int
	// ActiveQuizzes is ordered by creation time, oldest first.
	ActiveQuizzes []*CompetitiveSession

	CreateTime time.Time
}

// Question is one record from the question provider.
type Question struct {
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
	// Type is "boolean" for true/false or "multiple" for multi-choice.
	Type       string `json:"type"`
	Category   string `json:"category,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

// Options returns the answer choices of the question: the distractors
// plus the correct answer, in stored order. Shuffling is up to the
// renderer.
func (q Question) Options() []string {
	opts := make([]string, 0, len(q.IncorrectAnswers)+1)
	opts = append(opts, q.IncorrectAnswers...)
	return append(opts, q.CorrectAnswer)
}

// Result of answering a single question.
type Result string

const (
	ResultCorrect   Result = "correct"
	ResultIncorrect Result = "incorrect"
)

// TeamStanding is one leaderboard row.
type TeamStanding struct {
	Team   string
	Points int
	Colour string
}

// Leaderboard is the full set of team standings, ordered by points
// in descending order.
type Leaderboard struct {
	Standings []TeamStanding
}

// Score is the individual scoring snapshot carried by score events.
type Score struct {
	Username    string
	Team        string
	TotalPoints int
	UpdateTime  time.Time
}
