package domain

import (
	"errors"
	"slices"
	"time"
)

// MaxActiveQuizzes caps the number of concurrent competitive sessions
// a profile may hold. Starting one more evicts the oldest by creation
// order.
const MaxActiveQuizzes = 5

var (
	// ErrQuizExhausted is returned when answering a competitive session
	// whose cursor already reached the end of its questions.
	ErrQuizExhausted = errors.New("quiz exhausted")
	// ErrNoQuestions is returned when answering an infinite session
	// whose question queue ran dry before an expand call refilled it.
	ErrNoQuestions = errors.New("no questions queued")
)

// CompetitiveSession is a persisted quiz attempt. The question list is
// fixed at creation; Index is the cursor of the next question to
// answer and advances by exactly one on every answer, right or wrong.
// The session is exhausted once Index reaches the question count.
type CompetitiveSession struct {
	Name      string
	Questions []Question
	Index     int
	CreatedAt time.Time
}

// Exhausted reports whether the session has no questions left.
func (s *CompetitiveSession) Exhausted() bool {
	return s.Index >= len(s.Questions)
}

// Current returns the question at the cursor, or ErrQuizExhausted if
// the session is terminal.
func (s *CompetitiveSession) Current() (Question, error) {
	if s.Exhausted() {
		return Question{}, ErrQuizExhausted
	}
	return s.Questions[s.Index], nil
}

// Answer grades selected against the question at the cursor and
// advances the cursor. Correctness is case-sensitive exact equality
// with the stored correct answer; no trimming or entity decoding.
// An exhausted session rejects the answer and does not move.
func (s *CompetitiveSession) Answer(selected string) (Result, error) {
	q, err := s.Current()
	if err != nil {
		return "", err
	}

	s.Index++
	if selected == q.CorrectAnswer {
		return ResultCorrect, nil
	}
	return ResultIncorrect, nil
}

// InfiniteSession is a volatile, lives-bounded quiz attempt. Its
// question queue is consumed front-first and replenished by Extend.
// Lives never goes below zero and is never incremented; the session
// keeps grading answers even at zero lives, callers decide when to
// stop.
type InfiniteSession struct {
	Questions []Question
	Lives     int
}

// Extend appends a question batch to the back of the queue.
func (s *InfiniteSession) Extend(qs []Question) {
	s.Questions = append(s.Questions, qs...)
}

// Answer pops the front question, grades selected against it and
// returns the remaining lives. A wrong answer costs one life while
// any remain. ErrNoQuestions is returned when the queue is empty.
func (s *InfiniteSession) Answer(selected string) (Result, int, error) {
	if len(s.Questions) == 0 {
		return "", s.Lives, ErrNoQuestions
	}

	q := s.Questions[0]
	s.Questions = s.Questions[1:]

	if selected == q.CorrectAnswer {
		return ResultCorrect, s.Lives, nil
	}
	if s.Lives > 0 {
		s.Lives--
	}
	return ResultIncorrect, s.Lives, nil
}

// StartQuiz stores a fresh competitive session under name. Reusing the
// name of an existing session replaces it with a brand-new session and
// refreshes its creation order. Exceeding MaxActiveQuizzes evicts the
// oldest session.
func (p *Profile) StartQuiz(name string, qs []Question, now time.Time) *CompetitiveSession {
	s := &CompetitiveSession{
		Name:      name,
		Questions: qs,
		CreatedAt: now,
	}

	for i, active := range p.ActiveQuizzes {
		if active.Name == name {
			p.ActiveQuizzes = append(slices.Delete(p.ActiveQuizzes, i, i+1), s)
			return s
		}
	}

	p.ActiveQuizzes = append(p.ActiveQuizzes, s)
	if len(p.ActiveQuizzes) > MaxActiveQuizzes {
		p.ActiveQuizzes = slices.Delete(p.ActiveQuizzes, 0, len(p.ActiveQuizzes)-MaxActiveQuizzes)
	}
	return s
}

// Quiz returns the active competitive session stored under name.
func (p *Profile) Quiz(name string) (*CompetitiveSession, bool) {
	for _, s := range p.ActiveQuizzes {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the profile. Stores hand out copies so
// callers follow the read-modify-write contract instead of mutating
// shared state in place.
func (p *Profile) Clone() *Profile {
	cp := *p
	cp.ActiveQuizzes = make([]*CompetitiveSession, 0, len(p.ActiveQuizzes))
	for _, s := range p.ActiveQuizzes {
		sc := *s
		sc.Questions = slices.Clone(s.Questions)
		cp.ActiveQuizzes = append(cp.ActiveQuizzes, &sc)
	}
	return &cp
}
