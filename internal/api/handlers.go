package api

import (
	"math/rand"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizzyhq/quizzy/internal/domain"
	"github.com/quizzyhq/quizzy/internal/errors"
	"github.com/quizzyhq/quizzy/internal/quiz"
	"github.com/quizzyhq/quizzy/internal/trivia"
	"github.com/quizzyhq/quizzy/internal/user"
)

type questionPayload struct {
	Question         string   `json:"question" binding:"required"`
	CorrectAnswer    string   `json:"correct_answer" binding:"required"`
	IncorrectAnswers []string `json:"incorrect_answers"`
	Type             string   `json:"type"`
	Category         string   `json:"category"`
	Difficulty       string   `json:"difficulty"`
}

// fetchPayload asks the service to pull the batch from the question
// provider instead of shipping questions inline.
type fetchPayload struct {
	Amount     int    `json:"amount"`
	Category   int    `json:"category"`
	Difficulty string `json:"difficulty"`
	Type       string `json:"type"`
}

func toQuestions(in []questionPayload) []domain.Question {
	out := make([]domain.Question, 0, len(in))
	for _, q := range in {
		out = append(out, domain.Question(q))
	}
	return out
}

// questionBatch resolves the batch of a start/expand request: inline
// questions win, otherwise the provider is asked. Provider failures
// pass through untouched; retrying is the client's decision.
func (a *API) questionBatch(c *gin.Context, inline []questionPayload, fetch *fetchPayload) ([]domain.Question, error) {
	if len(inline) > 0 {
		return toQuestions(inline), nil
	}
	if fetch == nil {
		return nil, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("either questions or fetch must be given"))
	}

	return a.questions.Fetch(c.Request.Context(), trivia.FetchRequest{
		Amount:     fetch.Amount,
		Category:   fetch.Category,
		Difficulty: fetch.Difficulty,
		Type:       fetch.Type,
	})
}

func (a *API) signUp(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Password string `json:"password" binding:"required"`
		Team     string `json:"team" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	resp, err := a.users.SignUp(c.Request.Context(), user.SignUpRequest(req))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"api_key": resp.APIKey})
}

func (a *API) login(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	resp, err := a.users.Login(c.Request.Context(), user.LoginRequest(req))
	if err != nil {
		abortWithError(c, err)
		return
	}

	// 201 on login mirrors sign-up; existing clients key off it.
	c.JSON(http.StatusCreated, gin.H{"api_key": resp.APIKey})
}

func (a *API) getScore(c *gin.Context) {
	score, err := a.users.Score(c.Request.Context(), caller(c).Name)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"score": score})
}

func (a *API) renderLeaderboard(c *gin.Context) {
	standings, err := a.teams.Standings(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toStandingsPayload(standings)})
}

func (a *API) renderQuiz(c *gin.Context) {
	quizName := c.Query("quiz_name")
	if quizName == "" {
		abortWithError(c, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("quiz_name is required")))
		return
	}

	q, err := a.quiz.CurrentQuestion(c.Request.Context(), quiz.CurrentQuestionRequest{
		Username: caller(c).Name,
		QuizName: quizName,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	// Shuffle so the correct answer's position gives nothing away.
	options := q.Options()
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"question":   q.Question,
		"type":       q.Type,
		"category":   q.Category,
		"difficulty": q.Difficulty,
		"options":    options,
	}})
}

func (a *API) startQuiz(c *gin.Context) {
	var req struct {
		QuizName  string            `json:"quiz_name" binding:"required"`
		Questions []questionPayload `json:"questions" binding:"omitempty,dive"`
		Fetch     *fetchPayload     `json:"fetch"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	qs, err := a.questionBatch(c, req.Questions, req.Fetch)
	if err != nil {
		abortWithError(c, err)
		return
	}

	err = a.quiz.StartQuiz(c.Request.Context(), quiz.StartQuizRequest{
		Username:  caller(c).Name,
		QuizName:  req.QuizName,
		Questions: qs,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "quiz started"})
}

func (a *API) answerQuiz(c *gin.Context) {
	var req struct {
		QuizName string `json:"quiz_name" binding:"required"`
		Selected string `json:"selected" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	resp, err := a.quiz.AnswerQuiz(c.Request.Context(), quiz.AnswerQuizRequest{
		Username: caller(c).Name,
		QuizName: req.QuizName,
		Selected: req.Selected,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": resp.Result})
}

func (a *API) startInfinite(c *gin.Context) {
	var req struct {
		Lives     int               `json:"lives" binding:"required,min=1"`
		Questions []questionPayload `json:"questions" binding:"omitempty,dive"`
		Fetch     *fetchPayload     `json:"fetch"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	qs, err := a.questionBatch(c, req.Questions, req.Fetch)
	if err != nil {
		abortWithError(c, err)
		return
	}

	err = a.quiz.StartInfinite(c.Request.Context(), quiz.StartInfiniteRequest{
		Username:  caller(c).Name,
		Questions: qs,
		Lives:     req.Lives,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "infinite quiz started"})
}

func (a *API) expandInfinite(c *gin.Context) {
	var req struct {
		Questions []questionPayload `json:"questions" binding:"omitempty,dive"`
		Fetch     *fetchPayload     `json:"fetch"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	qs, err := a.questionBatch(c, req.Questions, req.Fetch)
	if err != nil {
		abortWithError(c, err)
		return
	}

	err = a.quiz.ExpandInfinite(c.Request.Context(), quiz.ExpandInfiniteRequest{
		Username:  caller(c).Name,
		Questions: qs,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "infinite quiz expanded"})
}

func (a *API) answerInfinite(c *gin.Context) {
	var req struct {
		Selected string `json:"selected" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	resp, err := a.quiz.AnswerInfinite(c.Request.Context(), quiz.AnswerInfiniteRequest{
		Username: caller(c).Name,
		Selected: req.Selected,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": resp.Result, "lives": resp.Lives})
}
