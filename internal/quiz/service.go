package quiz

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/quizzyhq/quizzy/internal/domain"
	"github.com/quizzyhq/quizzy/internal/errors"
	"github.com/quizzyhq/quizzy/internal/event"
	"github.com/quizzyhq/quizzy/internal/telemetry"
)

// ProfileStore is the whole-record persistence the engine drives.
type ProfileStore interface {
	Profile(ctx context.Context, name string) (*domain.Profile, error)
	SaveProfile(ctx context.Context, p *domain.Profile) error
}

// TeamLedger records one point for a team. The implementation must be
// atomic per team.
type TeamLedger interface {
	Increment(ctx context.Context, team string) error
}

type Config struct {
	EventBus *event.Bus
	Profiles ProfileStore
	Teams    TeamLedger
}

// Service is the session engine: it owns the quiz lifecycle for both
// networked modes and produces every scoring side effect. Profile
// mutations are serialized per user; infinite sessions live only in
// this process and vanish on restart.
type Service struct {
	eb       *event.Bus
	profiles ProfileStore
	teams    TeamLedger

	users *keyMutex

	mu       sync.Mutex
	infinite map[string]*domain.InfiniteSession
}

func NewService(c Config) *Service {
	return &Service{
		eb:       c.EventBus,
		profiles: c.Profiles,
		teams:    c.Teams,
		users:    newKeyMutex(),
		infinite: make(map[string]*domain.InfiniteSession),
	}
}

type StartQuizRequest struct {
	Username  string
	QuizName  string
	Questions []domain.Question
}

// StartQuiz stores a new competitive session under the quiz name.
// Reusing a name restarts that quiz; a sixth concurrent quiz evicts
// the user's oldest one.
func (s *Service) StartQuiz(ctx context.Context, req StartQuizRequest) error {
	if len(req.Questions) == 0 {
		return errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("quiz %q has no questions", req.QuizName))
	}

	unlock := s.users.Lock(req.Username)
	defer unlock()

	p, err := s.profiles.Profile(ctx, req.Username)
	if err != nil {
		return err
	}

	p.StartQuiz(req.QuizName, req.Questions, time.Now())
	return s.profiles.SaveProfile(ctx, p)
}

type AnswerQuizRequest struct {
	Username string
	QuizName string
	Selected string
}

type AnswerQuizResponse struct {
	Result domain.Result
}

// AnswerQuiz grades the current question of the named session. The
// cursor advances on every answer; a correct one adds a point to the
// user and their team, both persisted before returning. Answering an
// exhausted session is a failed precondition.
func (s *Service) AnswerQuiz(ctx context.Context, req AnswerQuizRequest) (*AnswerQuizResponse, error) {
	unlock := s.users.Lock(req.Username)
	defer unlock()

	p, err := s.profiles.Profile(ctx, req.Username)
	if err != nil {
		return nil, err
	}

	sess, ok := p.Quiz(req.QuizName)
	if !ok {
		return nil, errors.New(errors.CodeNotFound,
			errors.WithMessagef("no active quiz %q", req.QuizName))
	}

	res, err := sess.Answer(req.Selected)
	if stderrors.Is(err, domain.ErrQuizExhausted) {
		return nil, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("quiz %q is exhausted", req.QuizName))
	}
	if err != nil {
		return nil, err
	}

	if res == domain.ResultCorrect {
		p.Points++
	}

	if err := s.profiles.SaveProfile(ctx, p); err != nil {
		return nil, err
	}

	if res == domain.ResultCorrect {
		if err := s.recordPoint(ctx, p); err != nil {
			return nil, err
		}
	}

	telemetry.CountAnswer("competitive", res)
	return &AnswerQuizResponse{Result: res}, nil
}

type CurrentQuestionRequest struct {
	Username string
	QuizName string
}

// CurrentQuestion returns the question at the session's cursor for
// rendering, without advancing anything.
func (s *Service) CurrentQuestion(ctx context.Context, req CurrentQuestionRequest) (*domain.Question, error) {
	p, err := s.profiles.Profile(ctx, req.Username)
	if err != nil {
		return nil, err
	}

	sess, ok := p.Quiz(req.QuizName)
	if !ok {
		return nil, errors.New(errors.CodeNotFound,
			errors.WithMessagef("no active quiz %q", req.QuizName))
	}

	q, err := sess.Current()
	if stderrors.Is(err, domain.ErrQuizExhausted) {
		return nil, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("quiz %q is exhausted", req.QuizName))
	}
	if err != nil {
		return nil, err
	}

	return &q, nil
}

type StartInfiniteRequest struct {
	Username  string
	Questions []domain.Question
	Lives     int
}

// StartInfinite creates a fresh infinite session for the caller,
// replacing any previous one.
func (s *Service) StartInfinite(ctx context.Context, req StartInfiniteRequest) error {
	if req.Lives < 1 {
		return errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("lives must be positive, got %d", req.Lives))
	}
	if len(req.Questions) == 0 {
		return errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("infinite quiz needs an initial question batch"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.infinite[req.Username] = &domain.InfiniteSession{
		Questions: req.Questions,
		Lives:     req.Lives,
	}
	return nil
}

type ExpandInfiniteRequest struct {
	Username  string
	Questions []domain.Question
}

// ExpandInfinite appends a batch to the caller's running infinite
// session. Keeping the queue fed in time is the caller's policy.
func (s *Service) ExpandInfinite(ctx context.Context, req ExpandInfiniteRequest) error {
	if len(req.Questions) == 0 {
		return errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("expand needs a question batch"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.infinite[req.Username]
	if !ok {
		return errors.New(errors.CodeNotFound,
			errors.WithMessagef("no active infinite quiz"))
	}

	sess.Extend(req.Questions)
	return nil
}

type AnswerInfiniteRequest struct {
	Username string
	Selected string
}

type AnswerInfiniteResponse struct {
	Result domain.Result
	Lives  int
}

// AnswerInfinite grades the front of the caller's queue. Correct
// answers score exactly like competitive ones; wrong answers cost a
// life. The engine answers even at zero lives, the caller stops when
// it sees fit.
func (s *Service) AnswerInfinite(ctx context.Context, req AnswerInfiniteRequest) (*AnswerInfiniteResponse, error) {
	unlock := s.users.Lock(req.Username)
	defer unlock()

	s.mu.Lock()
	sess, ok := s.infinite[req.Username]
	if !ok {
		s.mu.Unlock()
		return nil, errors.New(errors.CodeNotFound,
			errors.WithMessagef("no active infinite quiz"))
	}
	res, lives, err := sess.Answer(req.Selected)
	s.mu.Unlock()

	if stderrors.Is(err, domain.ErrNoQuestions) {
		return nil, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("question queue is empty, expand the quiz first"))
	}
	if err != nil {
		return nil, err
	}

	if res == domain.ResultCorrect {
		p, err := s.profiles.Profile(ctx, req.Username)
		if err != nil {
			return nil, err
		}

		p.Points++
		if err := s.profiles.SaveProfile(ctx, p); err != nil {
			return nil, err
		}
		if err := s.recordPoint(ctx, p); err != nil {
			return nil, err
		}
	}

	telemetry.CountAnswer("infinite", res)
	return &AnswerInfiniteResponse{Result: res, Lives: lives}, nil
}

// recordPoint adds the point to the team ledger and announces the new
// score. The ledger increment is part of the operation; the event only
// feeds derived consumers like the published leaderboard.
func (s *Service) recordPoint(ctx context.Context, p *domain.Profile) error {
	if err := s.teams.Increment(ctx, p.Team); err != nil {
		return err
	}

	s.eb.Publish(ctx, domain.EventScoreUpdated{
		Score: domain.Score{
			Username:    p.Name,
			Team:        p.Team,
			TotalPoints: p.Points,
			UpdateTime:  time.Now(),
		},
	})
	return nil
}
