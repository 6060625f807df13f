package api

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/quizzyhq/quizzy/internal/domain"
)

const maxConcurrentPublishes = 10

type (
	// Notification is the envelope pushed over Redis pub/sub.
	Notification struct {
		Event string `json:"event"`
		Data  any    `json:"data"`
	}

	Standing struct {
		Team   string `json:"team"`
		Points int    `json:"points"`
		Colour string `json:"colour"`
	}
)

func toStandingsPayload(in []domain.TeamStanding) []Standing {
	out := make([]Standing, 0, len(in))
	for _, s := range in {
		out = append(out, Standing(s))
	}
	return out
}

// publishLeaderboardUpdated fans a standings snapshot out to one
// pub/sub channel per team, so clients subscribe to their own team's
// channel and still see the full board.
func (a *API) publishLeaderboardUpdated(ctx context.Context, e domain.EventLeaderboardUpdated) error {
	data := toStandingsPayload(e.Leaderboard.Standings)

	var eg errgroup.Group
	eg.SetLimit(maxConcurrentPublishes)

	for _, s := range data {
		s := s
		eg.Go(func() error {
			return a.publishNotification(ctx, s.Team, e.Name(), data)
		})
	}

	return eg.Wait()
}

func (a *API) publishNotification(ctx context.Context, team, event string, data any) error {
	n := Notification{
		Event: event,
		Data:  data,
	}

	b, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("pubsub: marshal %s: %v", event, err)
	}

	return a.redis.Publish(ctx, fmt.Sprintf("%s:team:%s", a.prefix, team), b).Err()
}
