// Package solo implements the single-player client: discrete
// request/response calls against the server's session endpoints, plus the
// running score and accuracy the play screen shows.
package solo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pkeller/movie-trivia/client/render"
	"github.com/pkeller/movie-trivia/client/view"
	"github.com/pkeller/movie-trivia/pkg/protocol"
)

// UserPrompt surfaces blocking alerts; every failure here is terminal for
// that one action and waits for the user to try again.
type UserPrompt interface {
	Alert(message string)
}

// Stats is the running tally for one play-through.
type Stats struct {
	Score          int
	QuestionsAsked int
}

// Accuracy is round(score/questionsAsked*100), shown as "0%" before any
// question has been answered.
func (s Stats) Accuracy() string {
	if s.QuestionsAsked == 0 {
		return "0%"
	}
	pct := math.Round(float64(s.Score) / float64(s.QuestionsAsked) * 100)
	return fmt.Sprintf("%d%%", int(pct))
}

type Client struct {
	baseURL string
	http    *http.Client
	prompt  UserPrompt
	log     *zap.Logger

	mu         sync.Mutex
	view       *view.Controller
	stats      Stats
	difficulty string
	question   protocol.QuestionResponse
	lastResult protocol.CheckAnswerResponse
	page       string
	feedback   string
}

func New(baseURL string, prompt UserPrompt, log *zap.Logger) *Client {
	jar := newCookieJar()
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 40 * time.Second, Jar: jar},
		prompt:  prompt,
		log:     log,
		view:    view.NewController(),
	}
}

// StartGame posts the chosen difficulty and, on success, moves to the play
// view and fetches the first question. No explicit choice means medium.
func (c *Client) StartGame(ctx context.Context, difficulty string) error {
	if difficulty == "" {
		difficulty = "medium"
	}

	var resp protocol.StartGameResponse
	if err := c.post(ctx, "/start_game", protocol.StartGameRequest{Difficulty: difficulty}, &resp); err != nil {
		c.prompt.Alert("Error starting game: " + err.Error())
		return err
	}
	if resp.Status != protocol.StatusSuccess {
		c.prompt.Alert("Error: " + resp.Message)
		return fmt.Errorf("start_game: %s", resp.Message)
	}

	c.mu.Lock()
	c.difficulty = difficulty
	c.view.Show(view.ScreenGame)
	c.mu.Unlock()

	return c.FetchQuestion(ctx)
}

// FetchQuestion retrieves the next question. The loading indicator is set
// before the call and cleared on every exit path, success or failure.
func (c *Client) FetchQuestion(ctx context.Context) error {
	c.mu.Lock()
	c.view.Loading = true
	c.view.QuestionCard = false
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.view.Loading = false
		c.mu.Unlock()
	}()

	var resp protocol.QuestionResponse
	if err := c.post(ctx, "/get_question", struct{}{}, &resp); err != nil {
		c.prompt.Alert("Error fetching question: " + err.Error())
		return err
	}
	if resp.Status != protocol.StatusSuccess {
		c.prompt.Alert("Error: " + resp.Message)
		return fmt.Errorf("get_question: %s", resp.Message)
	}

	c.mu.Lock()
	c.question = resp
	c.view.QuestionCard = true
	c.view.OptionsEnabled = true
	c.view.Feedback = false
	c.feedback = ""
	c.page = render.QuestionCard(protocol.NewQuestion{
		Question:       resp.Question,
		Options:        resp.Options,
		QuestionNumber: resp.QuestionNumber,
	}, true)
	c.mu.Unlock()
	return nil
}

// SubmitAnswer sends the chosen option. Option controls are disabled before
// the request leaves, and nothing re-enables them until the next question
// renders; submission is not reentrant.
func (c *Client) SubmitAnswer(ctx context.Context, answer string) error {
	c.mu.Lock()
	if !c.view.OptionsEnabled {
		c.mu.Unlock()
		return nil
	}
	c.view.OptionsEnabled = false
	q := c.question
	c.page = render.QuestionCard(protocol.NewQuestion{
		Question:       q.Question,
		Options:        q.Options,
		QuestionNumber: q.QuestionNumber,
	}, false)
	c.mu.Unlock()

	var resp protocol.CheckAnswerResponse
	if err := c.post(ctx, "/check_answer", protocol.CheckAnswerRequest{Answer: answer}, &resp); err != nil {
		c.prompt.Alert("Error submitting answer: " + err.Error())
		return err
	}
	if resp.Status != protocol.StatusSuccess {
		c.prompt.Alert("Error: " + resp.Message)
		return fmt.Errorf("check_answer: %s", resp.Message)
	}

	c.mu.Lock()
	c.stats.QuestionsAsked++
	if resp.Correct {
		c.stats.Score++
	}
	c.view.Feedback = true
	c.feedback = render.SoloFeedback(resp, answer)
	c.lastResult = resp
	c.mu.Unlock()
	return nil
}

// Restart zeroes the visible counters and returns to the setup view. The
// server resets its side on the next StartGame.
func (c *Client) Restart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = Stats{}
	c.question = protocol.QuestionResponse{}
	c.page = ""
	c.feedback = ""
	c.view.Feedback = false
	c.view.QuestionCard = false
	c.view.OptionsEnabled = false
	c.view.Show(view.ScreenMainMenu)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return json.NewDecoder(resp.Body).Decode(out)
}
