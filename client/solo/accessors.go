package solo

import (
	"net/http"
	"net/http/cookiejar"

	"github.com/pkeller/movie-trivia/client/view"
	"github.com/pkeller/movie-trivia/pkg/protocol"
)

func (c *Client) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Client) View() view.Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.view
}

// CurrentQuestion returns the pending question, for front-ends presenting
// numbered choices.
func (c *Client) CurrentQuestion() (protocol.QuestionResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.question, c.question.Question != ""
}

// LastResult returns the grading of the most recent answer.
func (c *Client) LastResult() protocol.CheckAnswerResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResult
}

// QuestionHTML and FeedbackHTML return the rendered fragments for the play
// screen regions.
func (c *Client) QuestionHTML() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

func (c *Client) FeedbackHTML() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.feedback
}

// newCookieJar carries the server's session cookie across calls; the quiz
// session lives behind it.
func newCookieJar() http.CookieJar {
	jar, err := cookiejar.New(nil)
	if err != nil {
		// cookiejar.New with nil options cannot fail.
		panic(err)
	}
	return jar
}
