// Package solo serves the single-player mode: per-browser-session quiz state
// behind three request/response endpoints.
package solo

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pkeller/movie-trivia/internal/question"
	"github.com/pkeller/movie-trivia/pkg/protocol"
)

const sessionCookie = "trivia_session"

type session struct {
	difficulty    question.Difficulty
	current       *question.Question
	askedTopics   []string
	questionCount int
}

// Store keeps one quiz session per browser, keyed by a cookie id.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session
	gen      question.Generator
	log      *zap.Logger
}

func NewStore(gen question.Generator, log *zap.Logger) *Store {
	return &Store{
		sessions: make(map[string]*session),
		gen:      gen,
		log:      log,
	}
}

// StartGame handles POST /start_game: resets the caller's session to the
// chosen difficulty.
func (s *Store) StartGame(w http.ResponseWriter, r *http.Request) {
	var req protocol.StartGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, protocol.StartGameResponse{Status: protocol.StatusError, Message: "Invalid request body"})
		return
	}

	id := s.sessionID(w, r)
	s.mu.Lock()
	s.sessions[id] = &session{difficulty: question.ParseDifficulty(req.Difficulty)}
	s.mu.Unlock()

	writeJSON(w, protocol.StartGameResponse{Status: protocol.StatusSuccess})
}

// GetQuestion handles POST /get_question: generates and stores the next
// question for the caller's session.
func (s *Store) GetQuestion(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)

	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		writeJSON(w, protocol.QuestionResponse{Status: protocol.StatusError, Message: "No active game session"})
		return
	}
	difficulty := sess.difficulty
	topics := append([]string(nil), sess.askedTopics...)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(r.Context(), 35*time.Second)
	defer cancel()
	q, err := s.gen.Next(ctx, difficulty, topics)
	if err != nil {
		s.log.Warn("generate question", zap.Error(err))
		writeJSON(w, protocol.QuestionResponse{Status: protocol.StatusError, Message: "Error generating question: " + err.Error()})
		return
	}

	s.mu.Lock()
	sess.current = &q
	sess.questionCount++
	if q.Topic != "" {
		sess.askedTopics = append(sess.askedTopics, q.Topic)
	}
	number := sess.questionCount
	s.mu.Unlock()

	writeJSON(w, protocol.QuestionResponse{
		Status:         protocol.StatusSuccess,
		Question:       q.Text,
		Options:        q.Options,
		QuestionNumber: number,
	})
}

// CheckAnswer handles POST /check_answer: grades the pending question.
func (s *Store) CheckAnswer(w http.ResponseWriter, r *http.Request) {
	var req protocol.CheckAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, protocol.CheckAnswerResponse{Status: protocol.StatusError, Message: "Invalid request body"})
		return
	}

	id := s.sessionID(w, r)
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		writeJSON(w, protocol.CheckAnswerResponse{Status: protocol.StatusError, Message: "No active game session"})
		return
	}
	if sess.current == nil {
		writeJSON(w, protocol.CheckAnswerResponse{Status: protocol.StatusError, Message: "No active question"})
		return
	}

	q := sess.current
	sess.current = nil

	writeJSON(w, protocol.CheckAnswerResponse{
		Status:        protocol.StatusSuccess,
		Correct:       req.Answer == q.CorrectAnswer,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
	})
}

// sessionID reads the session cookie, minting one on first contact.
func (s *Store) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
	})
	return id
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
