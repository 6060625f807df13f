package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/quizzyhq/quizzy/internal/domain"
)

var answersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "quizzy",
	Name:      "answers_total",
	Help:      "Graded quiz answers by play mode and result.",
}, []string{"mode", "result"})

func init() {
	prometheus.MustRegister(answersTotal)
}

// CountAnswer records one graded answer.
func CountAnswer(mode string, result domain.Result) {
	answersTotal.WithLabelValues(mode, string(result)).Inc()
}
