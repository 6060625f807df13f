//go:build integration_test

package demo

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/quizzyhq/quizzy/client"
)

// Demo flow against a locally running server (CONFIG_PATH pointed at
// configs/local.yaml) and its Redis.
const (
	baseURL   = "http://localhost:8080"
	redisAddr = "localhost:6379"
)

func TestQuizDemo(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		wg    = new(sync.WaitGroup)
		stamp = time.Now().UnixMilli()
		alice = fmt.Sprintf("alice-%d", stamp)
		bob   = fmt.Sprintf("bob-%d", stamp)
	)

	// Watch blake's leaderboard channel while the users play.
	subscribeAsTeam(t, makeRedis(t), wg, "blake")

	ac := client.New(baseURL)
	_, err := ac.SignUp(ctx, alice, "pw", "blake")
	require.NoError(t, err)

	bc := client.New(baseURL)
	_, err = bc.SignUp(ctx, bob, "pw", "ngata")
	require.NoError(t, err)

	questions := []client.Question{
		{Question: "Capital of France?", CorrectAnswer: "Paris", IncorrectAnswers: []string{"London", "Berlin", "Madrid"}, Type: "multiple"},
		{Question: "The answer to everything?", CorrectAnswer: "42", IncorrectAnswers: []string{"7", "13", "99"}, Type: "multiple"},
	}

	// Competitive: alice plays both questions.
	require.NoError(t, ac.StartQuiz(ctx, "demo", questions))
	for _, q := range questions {
		res, err := ac.AnswerQuiz(ctx, "demo", q.CorrectAnswer)
		require.NoError(t, err)
		t.Logf("alice answered %q: %s", q.Question, res.Result)
	}

	score, err := ac.Score(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, score)

	// Infinite: bob burns one life on purpose.
	require.NoError(t, bc.StartInfinite(ctx, 3, questions))
	res, err := bc.AnswerInfinite(ctx, "definitely wrong")
	require.NoError(t, err)
	require.Equal(t, 2, res.Lives)

	board, err := bc.Leaderboard(ctx)
	require.NoError(t, err)
	for _, s := range board {
		t.Logf("%s: %d points (%s)", s.Team, s.Points, s.Colour)
	}

	wg.Wait()
}

func subscribeAsTeam(t *testing.T, rc redis.UniversalClient, wg *sync.WaitGroup, team string) {
	wg.Add(1)
	sub := subscribeRedis(t, rc, fmt.Sprintf("local:pubsub:team:%s", team))
	go func() {
		defer wg.Done()

		for msg := range sub {
			var n struct {
				Event string          `json:"event"`
				Data  json.RawMessage `json:"data"`
			}
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				t.Logf("unmarshal notification: %v", err)
				continue
			}

			t.Logf("%s channel: %s %s", team, n.Event, n.Data)
		}
	}()
}

func subscribeRedis(t *testing.T, rc redis.UniversalClient, channel string) <-chan *redis.Message {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	sub := rc.Subscribe(ctx, channel)
	t.Cleanup(func() { sub.Close() })

	c := make(chan *redis.Message)
	go func() {
		defer close(c)

		for {
			msg, err := sub.ReceiveMessage(ctx)
			if err != nil {
				t.Log(err)
				return
			}

			c <- msg
		}
	}()

	return c
}

func makeRedis(t *testing.T) redis.UniversalClient {
	r := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{redisAddr},
	})
	t.Cleanup(func() { r.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.Ping(ctx).Err(); err != nil {
		t.Fatal(err)
	}

	return r
}
