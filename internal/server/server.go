package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/quizzyhq/quizzy/internal/api"
	"github.com/quizzyhq/quizzy/internal/event"
	"github.com/quizzyhq/quizzy/internal/quiz"
	"github.com/quizzyhq/quizzy/internal/storage/memory"
	"github.com/quizzyhq/quizzy/internal/storage/postgres"
	"github.com/quizzyhq/quizzy/internal/team"
	"github.com/quizzyhq/quizzy/internal/telemetry"
	"github.com/quizzyhq/quizzy/internal/trivia"
	"github.com/quizzyhq/quizzy/internal/user"
)

type Config struct {
	HTTP struct {
		Port int32
	}

	Storage struct {
		// Driver is "postgres" (default) or "memory" for local runs
		// without a database.
		Driver string
	}

	Redis struct {
		Teams struct {
			Addrs  []string
			Pass   string
			Prefix string
		}

		Pubsub struct {
			Addrs  []string
			Pass   string
			Prefix string
		}
	}

	Postgres struct {
		Profiles struct {
			Addr string
			User string
			Pass string
			Name string
		}
	}

	Trivia struct {
		BaseURL string
	}
}

// profileStore is what both the account service and the quiz engine
// need from storage.
type profileStore interface {
	user.Store
	quiz.ProfileStore
}

type Server struct {
	c Config

	eb *event.Bus

	infra struct {
		redis struct {
			teams  redis.UniversalClient
			pubsub redis.UniversalClient
		}

		postgres *pgxpool.Pool

		profiles profileStore
	}

	service struct {
		user *user.Service
		quiz *quiz.Service
		team *team.Service
	}

	trivia *trivia.Client

	http *http.Server
}

func Init(c Config) (*Server, error) {
	s := &Server{c: c}

	s.eb = event.NewBus()

	if err := s.initInfra(); err != nil {
		return nil, fmt.Errorf("server: init infra: %w", err)
	}

	s.initService()
	s.initAPI()
	return s, nil
}

func (s *Server) initInfra() error {
	if err := s.initRedis(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	if err := s.initStorage(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	return nil
}

func (s *Server) initRedis() error {
	connect := func(addrs []string, pass string) (redis.UniversalClient, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		r := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    addrs,
			Password: pass,
		})

		if err := telemetry.MonitorRedis(r); err != nil {
			return nil, err
		}

		if err := r.Ping(ctx).Err(); err != nil {
			return nil, err
		}

		return r, nil
	}

	var err error
	s.infra.redis.teams, err = connect(s.c.Redis.Teams.Addrs, s.c.Redis.Teams.Pass)
	if err != nil {
		return fmt.Errorf("teams: %w", err)
	}

	s.infra.redis.pubsub, err = connect(s.c.Redis.Pubsub.Addrs, s.c.Redis.Pubsub.Pass)
	if err != nil {
		return fmt.Errorf("pubsub: %w", err)
	}

	return nil
}

func (s *Server) initStorage() error {
	switch s.c.Storage.Driver {
	case "", "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		p := s.c.Postgres.Profiles
		cc, err := pgxpool.ParseConfig(fmt.Sprintf("postgres://%s:%s@%s/%s", p.User, p.Pass, p.Addr, p.Name))
		if err != nil {
			return err
		}

		db, err := pgxpool.NewWithConfig(ctx, cc)
		if err != nil {
			return err
		}
		if err := db.Ping(ctx); err != nil {
			return err
		}

		store := postgres.NewStore(db)
		if err := store.Init(ctx); err != nil {
			return err
		}

		s.infra.postgres = db
		s.infra.profiles = store

	case "memory":
		slog.Warn("storage: memory driver selected, profiles will not survive a restart")
		s.infra.profiles = memory.NewStore()

	default:
		return fmt.Errorf("unknown driver %q", s.c.Storage.Driver)
	}

	return nil
}

func (s *Server) initService() {
	s.trivia = trivia.NewClient(trivia.Config{
		BaseURL: s.c.Trivia.BaseURL,
	})

	s.service.user = user.NewService(user.Config{
		Store: s.infra.profiles,
	})

	s.service.team = team.NewService(team.Config{
		EventBus: s.eb,
		Redis:    s.infra.redis.teams,
		Prefix:   s.c.Redis.Teams.Prefix,
	})

	s.service.quiz = quiz.NewService(quiz.Config{
		EventBus: s.eb,
		Profiles: s.infra.profiles,
		Teams:    s.service.team,
	})
}

func (s *Server) initAPI() {
	e := gin.New()
	e.GET("/metrics", gin.WrapH(promhttp.Handler()))
	pprof.Register(e, "/debug/pprof")
	e.Use(gin.Recovery(), telemetry.HTTPLogger())

	api.New(api.Config{
		Engine:       e,
		EventBus:     s.eb,
		Users:        s.service.user,
		Quiz:         s.service.quiz,
		Teams:        s.service.team,
		Questions:    s.trivia,
		Redis:        s.infra.redis.pubsub,
		PubsubPrefix: s.c.Redis.Pubsub.Prefix,
	})

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.c.HTTP.Port),
		Handler:           e,
		ReadHeaderTimeout: 60 * time.Second,
	}
}

func (s *Server) Start() {
	ctx := context.TODO()

	var eg errgroup.Group
	eg.Go(func() error {
		slog.InfoContext(ctx, fmt.Sprintf("server: HTTP listening on port %d", s.c.HTTP.Port))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		slog.ErrorContext(ctx, "server: shutdown with error", "error", err)
	}
}

func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "server: shutdown HTTP failed", "error", err)
	}

	s.eb.Stop()

	if s.infra.postgres != nil {
		s.infra.postgres.Close()
	}

	slog.InfoContext(ctx, "server: shutdown completed")
}
