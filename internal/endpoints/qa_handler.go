package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"qa-metrics/internal/domain"
	"qa-metrics/internal/util"
)

type QuestionRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Region      string   `json:"region"`
}

type AnswerRequest struct {
	Answer string `json:"answer"`
}

type QuestionWithAnswers struct {
	Question domain.Question `json:"question"`
	Answers  []domain.Answer `json:"answers"`
}

// Questions serves the Q&A endpoints.
type Questions struct {
	Response APIResponse
	logger   *util.ServiceLogger
	store    domain.QAStore
}

func (q *Questions) Init(store domain.QAStore, webSlogger *util.ServiceLogger) {
	q.store = store
	q.logger = webSlogger
}

func (q *Questions) CreateQuestionHandler(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		q.logger.Error("Occured while unmarshalling question", zap.Error(err))
		q.Response.WriteErrorResponse(w, fmt.Errorf("%w: %v", ErrInvalidRequestBody, err))
		return
	}

	if strings.TrimSpace(req.Region) == "" {
		q.Response.WriteErrorResponse(w, ErrMissingRegion)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		q.Response.WriteErrorResponse(w, ErrMissingTitle)
		return
	}

	created, err := q.store.CreateQuestion(r.Context(), domain.Question{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Region:      req.Region,
	})
	if err != nil {
		q.logger.Error("Occured while CreateQuestion()", zap.Error(err))
		q.Response.WriteErrorResponseWithStatusCode(w, err, http.StatusBadRequest)
		return
	}

	q.Response.WriteResultResponseWithStatusCode(w, created, http.StatusCreated)
}

func (q *Questions) ListQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	questions, err := q.store.ListQuestions(r.Context())
	if err != nil {
		q.logger.Error("Occured while ListQuestions()", zap.Error(err))
		q.Response.WriteErrorResponse(w, err)
		return
	}
	q.Response.WriteResultResponse(w, questions)
}

// GetQuestionHandler returns the question together with its answers.
func (q *Questions) GetQuestionHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	question, err := q.store.GetQuestion(r.Context(), id)
	if err != nil {
		q.logQuestionError(id, err)
		q.Response.WriteErrorResponse(w, err)
		return
	}

	answers, err := q.store.ListAnswers(r.Context(), question.ID)
	if err != nil {
		q.logger.Error("Occured while ListAnswers()", zap.String("question_id", id), zap.Error(err))
		q.Response.WriteErrorResponse(w, err)
		return
	}

	q.Response.WriteResultResponse(w, QuestionWithAnswers{Question: question, Answers: answers})
}

// CreateAnswerHandler reports a missing question before looking at the body.
func (q *Questions) CreateAnswerHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := q.store.GetQuestion(r.Context(), id); err != nil {
		q.logQuestionError(id, err)
		q.Response.WriteErrorResponse(w, err)
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		q.logger.Error("Occured while unmarshalling answer", zap.Error(err))
		q.Response.WriteErrorResponse(w, fmt.Errorf("%w: %v", ErrInvalidRequestBody, err))
		return
	}

	if strings.TrimSpace(req.Answer) == "" {
		q.Response.WriteErrorResponse(w, ErrMissingAnswer)
		return
	}

	created, err := q.store.CreateAnswer(r.Context(), domain.Answer{QuestionID: id, Answer: req.Answer})
	if err != nil {
		q.logger.Error("Occured while CreateAnswer()", zap.String("question_id", id), zap.Error(err))
		if errors.Is(err, domain.ErrNotFound) {
			q.Response.WriteErrorResponse(w, err)
			return
		}
		q.Response.WriteErrorResponseWithStatusCode(w, err, http.StatusBadRequest)
		return
	}

	q.Response.WriteResultResponseWithStatusCode(w, created, http.StatusCreated)
}

func (q *Questions) ListAnswersHandler(w http.ResponseWriter, r *http.Request) {
	answers, err := q.store.ListAnswers(r.Context(), "")
	if err != nil {
		q.logger.Error("Occured while ListAnswers()", zap.Error(err))
		q.Response.WriteErrorResponse(w, err)
		return
	}
	q.Response.WriteResultResponse(w, answers)
}

func (q *Questions) logQuestionError(id string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		q.logger.Warn("Question not found", zap.String("question_id", id))
		return
	}
	q.logger.Error("Occured while GetQuestion()", zap.String("question_id", id), zap.Error(err))
}
