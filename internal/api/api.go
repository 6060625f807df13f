package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/quizzyhq/quizzy/internal/domain"
	"github.com/quizzyhq/quizzy/internal/errors"
	"github.com/quizzyhq/quizzy/internal/event"
	"github.com/quizzyhq/quizzy/internal/quiz"
	"github.com/quizzyhq/quizzy/internal/team"
	"github.com/quizzyhq/quizzy/internal/trivia"
	"github.com/quizzyhq/quizzy/internal/user"
)

// header carrying the caller's credential on every authenticated route.
const apiKeyHeader = "X-API-Key"

// gin context key holding the authenticated profile.
const profileKey = "profile"

type Config struct {
	Engine       *gin.Engine
	EventBus     *event.Bus
	Users        *user.Service
	Quiz         *quiz.Service
	Teams        *team.Service
	Questions    QuestionProvider
	Redis        Redis
	PubsubPrefix string
}

// QuestionProvider supplies a question batch when a request asks the
// service to fetch instead of sending questions inline.
type QuestionProvider interface {
	Fetch(ctx context.Context, req trivia.FetchRequest) ([]domain.Question, error)
}

type Redis interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// API adapts the services onto HTTP routes: credential resolution,
// request validation and error translation happen here, nothing else.
type API struct {
	users     *user.Service
	quiz      *quiz.Service
	teams     *team.Service
	questions QuestionProvider

	redis  Redis
	prefix string
}

func New(c Config) *API {
	a := &API{
		users:     c.Users,
		quiz:      c.Quiz,
		teams:     c.Teams,
		questions: c.Questions,
		redis:     c.Redis,
		prefix:    c.PubsubPrefix,
	}

	e := c.Engine
	e.POST("/signup", a.signUp)
	e.POST("/login", a.login)

	authed := e.Group("", a.authenticate)
	authed.GET("/get_score", a.getScore)
	authed.GET("/render_leaderboard", a.renderLeaderboard)
	authed.GET("/render_quiz", a.renderQuiz)
	authed.POST("/start_quiz", a.startQuiz)
	authed.POST("/answer_quiz", a.answerQuiz)
	authed.POST("/start_infinite_quiz", a.startInfinite)
	authed.POST("/expand_infinite_quiz", a.expandInfinite)
	authed.POST("/answer_infinite_quiz", a.answerInfinite)

	c.EventBus.Subscribe(domain.EventNameLeaderboardUpdated, func(ctx context.Context, e event.Event) error {
		return a.publishLeaderboardUpdated(ctx, e.(domain.EventLeaderboardUpdated))
	})

	return a
}

// authenticate resolves the API key header to a profile and aborts
// with 401 otherwise.
func (a *API) authenticate(c *gin.Context) {
	p, err := a.users.ResolveKey(c.Request.Context(), c.GetHeader(apiKeyHeader))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Set(profileKey, p)
	c.Next()
}

func caller(c *gin.Context) *domain.Profile {
	return c.MustGet(profileKey).(*domain.Profile)
}

// abortWithError translates a service error into the caller-visible
// response.
func abortWithError(c *gin.Context, err error) {
	e := errors.Convert(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(e.HTTPStatusCode(), gin.H{"error": e.Message})
}

func invalidRequest(c *gin.Context, err error) {
	abortWithError(c, errors.New(errors.CodeInvalidArgument,
		errors.WithMessagef("invalid request: missing or malformed fields"),
		errors.WithCause(err),
	))
}
