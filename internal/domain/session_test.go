package domain_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizzyhq/quizzy/internal/domain"
)

func questions(correct ...string) []domain.Question {
	qs := make([]domain.Question, 0, len(correct))
	for i, c := range correct {
		qs = append(qs, domain.Question{
			Question:         fmt.Sprintf("q%d", i+1),
			CorrectAnswer:    c,
			IncorrectAnswers: []string{"x", "y", "z"},
			Type:             "multiple",
		})
	}
	return qs
}

func TestCompetitiveSession_Answer(t *testing.T) {
	type answer struct {
		selected   string
		wantResult domain.Result
		wantErr    error
	}

	tests := map[string]struct {
		questions []domain.Question
		answers   []answer
		wantIndex int
	}{
		"correct answer advances the cursor": {
			questions: questions("Paris", "42"),
			answers: []answer{
				{selected: "Paris", wantResult: domain.ResultCorrect},
			},
			wantIndex: 1,
		},

		"wrong answer advances the cursor too": {
			questions: questions("Paris", "42"),
			answers: []answer{
				{selected: "London", wantResult: domain.ResultIncorrect},
			},
			wantIndex: 1,
		},

		"comparison is case-sensitive and exact": {
			questions: questions("Paris"),
			answers: []answer{
				{selected: "paris", wantResult: domain.ResultIncorrect},
			},
			wantIndex: 1,
		},

		"answering past the end fails and does not move the cursor": {
			questions: questions("Paris", "42"),
			answers: []answer{
				{selected: "Paris", wantResult: domain.ResultCorrect},
				{selected: "7", wantResult: domain.ResultIncorrect},
				{selected: "42", wantErr: domain.ErrQuizExhausted},
			},
			wantIndex: 2,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := &domain.CompetitiveSession{Name: "q1", Questions: tt.questions}

			for i, a := range tt.answers {
				res, err := s.Answer(a.selected)
				if a.wantErr != nil {
					require.ErrorIs(t, err, a.wantErr, "answer %d", i+1)
					continue
				}
				require.NoError(t, err, "answer %d", i+1)
				assert.Equal(t, a.wantResult, res, "answer %d", i+1)
			}

			assert.Equal(t, tt.wantIndex, s.Index)
			assert.LessOrEqual(t, s.Index, len(s.Questions), "cursor must never pass the question count")
		})
	}
}

func TestInfiniteSession_Answer(t *testing.T) {
	t.Run("wrong answers burn lives, correct answers do not", func(t *testing.T) {
		s := &domain.InfiniteSession{Questions: questions("a", "b", "c"), Lives: 3}

		res, lives, err := s.Answer("a")
		require.NoError(t, err)
		assert.Equal(t, domain.ResultCorrect, res)
		assert.Equal(t, 3, lives)

		res, lives, err = s.Answer("nope")
		require.NoError(t, err)
		assert.Equal(t, domain.ResultIncorrect, res)
		assert.Equal(t, 2, lives)
	})

	t.Run("session keeps grading at zero lives and lives stays at zero", func(t *testing.T) {
		// Stopping at zero lives is the caller's job, not the engine's.
		s := &domain.InfiniteSession{Questions: questions("a", "b", "c", "d"), Lives: 3}

		for i := 0; i < 3; i++ {
			_, _, err := s.Answer("nope")
			require.NoError(t, err)
		}
		require.Equal(t, 0, s.Lives)

		res, lives, err := s.Answer("nope")
		require.NoError(t, err, "a fourth answer is still accepted")
		assert.Equal(t, domain.ResultIncorrect, res)
		assert.Equal(t, 0, lives, "lives never goes negative")
	})

	t.Run("empty queue is an error until extended", func(t *testing.T) {
		s := &domain.InfiniteSession{Lives: 1}

		_, lives, err := s.Answer("a")
		require.ErrorIs(t, err, domain.ErrNoQuestions)
		assert.Equal(t, 1, lives)

		s.Extend(questions("a"))
		res, _, err := s.Answer("a")
		require.NoError(t, err)
		assert.Equal(t, domain.ResultCorrect, res)
	})
}

func TestProfile_StartQuiz(t *testing.T) {
	now := time.Now()

	t.Run("sixth quiz evicts the oldest by creation order", func(t *testing.T) {
		p := &domain.Profile{Name: "alice"}

		for i := 1; i <= 6; i++ {
			p.StartQuiz(fmt.Sprintf("quiz-%d", i), questions("a"), now.Add(time.Duration(i)*time.Second))
		}

		require.Len(t, p.ActiveQuizzes, domain.MaxActiveQuizzes)

		_, ok := p.Quiz("quiz-1")
		assert.False(t, ok, "oldest quiz should be evicted")
		for i := 2; i <= 6; i++ {
			_, ok := p.Quiz(fmt.Sprintf("quiz-%d", i))
			assert.True(t, ok)
		}
	})

	t.Run("restart replaces the session and refreshes its creation order", func(t *testing.T) {
		p := &domain.Profile{Name: "alice"}

		s := p.StartQuiz("q1", questions("a", "b"), now)
		_, err := s.Answer("a")
		require.NoError(t, err)

		restarted := p.StartQuiz("q1", questions("c"), now.Add(time.Second))
		require.Len(t, p.ActiveQuizzes, 1)
		assert.Equal(t, 0, restarted.Index, "restart begins at the first question")
		assert.Equal(t, restarted, p.ActiveQuizzes[len(p.ActiveQuizzes)-1], "restarted quiz counts as newest")
	})
}

func TestProfile_Clone(t *testing.T) {
	p := &domain.Profile{Name: "alice", Team: domain.TeamBlake}
	p.StartQuiz("q1", questions("a", "b"), time.Now())

	cp := p.Clone()
	_, err := cp.ActiveQuizzes[0].Answer("a")
	require.NoError(t, err)
	cp.Points++

	assert.Equal(t, 0, p.ActiveQuizzes[0].Index, "clone must not share session state")
	assert.Equal(t, 0, p.Points)
}

func TestNormalizeTeam(t *testing.T) {
	tests := map[string]struct {
		in     string
		want   string
		wantOK bool
	}{
		"valid team":              {in: "blake", want: "blake", wantOK: true},
		"case-insensitive match":  {in: "BLAKE", want: "blake", wantOK: true},
		"unknown team is refused": {in: "gryffindor", want: "gryffindor", wantOK: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := domain.NormalizeTeam(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}

	assert.Len(t, domain.Teams(), 6)
	for _, team := range domain.Teams() {
		assert.NotEmpty(t, domain.TeamColour(team))
	}
}
