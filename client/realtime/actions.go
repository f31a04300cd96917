package realtime

import (
	"context"
	"strings"

	"github.com/coder/websocket"

	"github.com/pkeller/movie-trivia/client/view"
	"github.com/pkeller/movie-trivia/pkg/protocol"
)

// Player actions. Each validates locally, mutates the view model, and emits
// at most one request. Failures surface through the prompt and leave prior
// state alone; there are no retries.

func (c *Client) SetDifficulty(d string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Difficulty = d
}

// ShowCreateGame validates the player name and moves to the create screen.
func (c *Client) ShowCreateGame(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		c.prompt.Alert("Please enter your name!")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.PlayerName = name
	c.view.Show(view.ScreenCreateGame)
}

// ShowJoinGame validates the player name and moves to the join screen.
func (c *Client) ShowJoinGame(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		c.prompt.Alert("Please enter your name!")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.PlayerName = name
	c.view.Show(view.ScreenJoinGame)
}

func (c *Client) CreateGame(ctx context.Context) error {
	c.mu.Lock()
	p := protocol.CreateGame{PlayerName: c.session.PlayerName, Difficulty: c.session.Difficulty}
	c.mu.Unlock()
	return c.emit(ctx, protocol.EvtCreateGame, p)
}

func (c *Client) JoinGame(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		c.prompt.Alert("Please enter a game code!")
		return nil
	}
	c.mu.Lock()
	p := protocol.JoinGame{GameID: code, PlayerName: c.session.PlayerName}
	c.mu.Unlock()
	return c.emit(ctx, protocol.EvtJoinGame, p)
}

func (c *Client) StartGame(ctx context.Context) error {
	return c.emit(ctx, protocol.EvtStartGame, nil)
}

// SubmitAnswer disables every option control before the request goes out, so
// a second submit is impossible until the next question re-enables them.
func (c *Client) SubmitAnswer(ctx context.Context, answer string) error {
	c.mu.Lock()
	if !c.view.OptionsEnabled {
		c.mu.Unlock()
		return nil
	}
	c.view.OptionsEnabled = false
	c.view.WaitingMessage = true
	c.page.Question = questionLocked(c)
	c.mu.Unlock()
	return c.emit(ctx, protocol.EvtSubmitAnswer, protocol.SubmitAnswer{Answer: answer})
}

func (c *Client) NextQuestion(ctx context.Context) error {
	c.mu.Lock()
	c.view.Loading = true
	c.view.QuestionCard = false
	c.view.NextQuestionButton = false
	c.mu.Unlock()
	return c.emit(ctx, protocol.EvtNextQuestion, nil)
}

// EndGame asks for confirmation first; declining sends nothing.
func (c *Client) EndGame(ctx context.Context) error {
	if !c.prompt.Confirm("Are you sure you want to end the game?") {
		return nil
	}
	return c.emit(ctx, protocol.EvtEndGame, nil)
}

// LeaveLobby tears the channel down and dials a fresh one, guaranteeing a
// clean session context on the server. The old game cannot be resumed, so
// everything belonging to it is cleared before the redial; a failed redial
// leaves the client disconnected but out of the game.
func (c *Client) LeaveLobby(ctx context.Context) error {
	c.mu.Lock()
	old := c.conn
	c.conn = nil
	c.session.GameID = ""
	c.session.PlayerID = ""
	c.session.IsHost = false
	c.question = protocol.NewQuestion{}
	c.page = Page{}
	c.mu.Unlock()
	if old != nil {
		old.Close(websocket.StatusNormalClosure, "leaving")
	}
	c.BackToMenu()

	conn, _, err := websocket.Dial(ctx, c.url, nil)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	return nil
}

// BackToMenu returns to the main menu and resets the selections the menu
// owns.
func (c *Client) BackToMenu() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Show(view.ScreenMainMenu)
	c.session.Difficulty = "medium"
}

func (c *Client) emit(ctx context.Context, t protocol.EventType, payload any) error {
	data, err := protocol.Pack(t, payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		c.prompt.Alert("Error: not connected")
		return nil
	}
	return conn.Write(ctx, websocket.MessageText, data)
}
