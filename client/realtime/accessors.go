package realtime

import (
	"github.com/pkeller/movie-trivia/client/render"
	"github.com/pkeller/movie-trivia/client/view"
	"github.com/pkeller/movie-trivia/pkg/protocol"
)

// Snapshot accessors for front-ends and tests. All return copies; the client
// keeps sole ownership of the live state.

func (c *Client) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) View() view.Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.view
}

func (c *Client) Page() Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// CurrentQuestion returns the last question payload, for front-ends that
// present options as numbered choices rather than HTML.
func (c *Client) CurrentQuestion() (protocol.NewQuestion, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.question, c.question.Question != ""
}

// questionLocked re-renders the current question with its options disabled.
// Caller holds the lock.
func questionLocked(c *Client) string {
	return render.QuestionCard(c.question, false)
}
