package team

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quizzyhq/quizzy/internal/domain"
	"github.com/quizzyhq/quizzy/internal/event"
)

// publishInterval throttles leaderboard publications: many answers can
// land in a short window, one snapshot per window is enough.
const publishInterval = 200 * time.Millisecond

type Config struct {
	EventBus *event.Bus
	Redis    redis.UniversalClient
	Prefix   string
}

// Service is the team ledger. Points live in a Redis sorted set keyed
// by team name, so increments are atomic without any locking on our
// side.
type Service struct {
	eb     *event.Bus
	redis  redis.UniversalClient
	prefix string
}

func NewService(c Config) *Service {
	s := &Service{
		eb:     c.EventBus,
		redis:  c.Redis,
		prefix: c.Prefix,
	}

	s.eb.Subscribe(domain.EventNameScoreUpdated, func(ctx context.Context, e event.Event) error {
		return s.schedulePublish(ctx, e.(domain.EventScoreUpdated).Score)
	})

	return s
}

// Increment adds one point to the named team.
func (s *Service) Increment(ctx context.Context, team string) error {
	if err := s.redis.ZIncrBy(ctx, s.pointsKey(), 1, team).Err(); err != nil {
		return fmt.Errorf("increment team %q: %w", team, err)
	}
	return nil
}

// Standings returns every team with its points and display colour,
// ordered by points descending. Teams that never scored show up with
// zero points.
func (s *Service) Standings(ctx context.Context) ([]domain.TeamStanding, error) {
	res, err := s.redis.ZRevRangeWithScores(ctx, s.pointsKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("get standings: %w", err)
	}

	points := make(map[string]int, len(res))
	for _, z := range res {
		points[z.Member.(string)] = int(z.Score)
	}

	standings := make([]domain.TeamStanding, 0, len(domain.Teams()))
	for _, team := range domain.Teams() {
		standings = append(standings, domain.TeamStanding{
			Team:   team,
			Points: points[team],
			Colour: domain.TeamColour(team),
		})
	}

	slices.SortStableFunc(standings, func(a, b domain.TeamStanding) int {
		return b.Points - a.Points
	})

	return standings, nil
}

// schedulePublish publishes a leaderboard snapshot at most once per
// interval. The SetNX key elects the publisher across instances.
func (s *Service) schedulePublish(ctx context.Context, sc domain.Score) error {
	ok, err := s.redis.SetNX(ctx, s.publishKey(), sc.UpdateTime.UnixMilli(), publishInterval).Result()
	if err != nil {
		return fmt.Errorf("setnx: %w", err)
	}
	if !ok {
		return nil
	}

	standings, err := s.Standings(ctx)
	if err != nil {
		return err
	}

	s.eb.Publish(ctx, domain.EventLeaderboardUpdated{
		Leaderboard: domain.Leaderboard{Standings: standings},
	})
	return nil
}

func (s *Service) pointsKey() string {
	return fmt.Sprintf("%s:teams:points", s.prefix)
}

func (s *Service) publishKey() string {
	return fmt.Sprintf("%s:teams:publish", s.prefix)
}
