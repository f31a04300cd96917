// Package realtime implements the multiplayer client: it owns the persistent
// channel to the game server, emits player actions, and reconciles every
// server-pushed event into the view model through a single dispatch point.
package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/pkeller/movie-trivia/client/render"
	"github.com/pkeller/movie-trivia/client/view"
	"github.com/pkeller/movie-trivia/pkg/protocol"
)

// UserPrompt is how the client talks to the person at the keyboard: blocking
// alerts for errors, transient notifications, and yes/no confirmation.
type UserPrompt interface {
	Alert(message string)
	Notify(message string)
	Confirm(message string) bool
}

// Session is the client's identity within one game. It is explicit state:
// created on create/join, cleared on leave.
type Session struct {
	PlayerName string
	Difficulty string
	GameID     string
	PlayerID   string
	IsHost     bool
}

// Page holds the rendered fragments for each region of the UI, rebuilt from
// the latest payloads.
type Page struct {
	GameCode       string
	PlayerCount    int
	Roster         string
	Question       string
	Feedback       string
	Leaderboard    string
	FinalResults   string
	TotalQuestions int
}

type Client struct {
	url    string
	prompt UserPrompt
	log    *zap.Logger

	// OnUpdate, when set, is invoked after every applied event so a
	// front-end can redraw. Called without the internal lock held.
	OnUpdate func()

	mu       sync.Mutex
	conn     *websocket.Conn
	session  Session
	view     *view.Controller
	page     Page
	question protocol.NewQuestion
}

func New(serverURL string, prompt UserPrompt, log *zap.Logger) *Client {
	return &Client{
		url:     serverURL,
		prompt:  prompt,
		log:     log,
		session: Session{Difficulty: "medium"},
		view:    view.NewController(),
	}
}

// Connect dials the server's realtime endpoint.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, c.url, nil)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	return nil
}

func (c *Client) Close() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn != nil {
		conn.Close(websocket.StatusNormalClosure, "bye")
	}
}

// Listen reads and applies server events until the connection is gone. A
// connection swapped out by LeaveLobby does not end the loop.
func (c *Client) Listen(ctx context.Context) error {
	for {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return nil
		}

		_, data, err := conn.Read(ctx)
		if err != nil {
			c.mu.Lock()
			replaced := c.conn != nil && c.conn != conn
			gone := c.conn == nil
			c.mu.Unlock()
			if replaced {
				continue
			}
			if gone {
				return nil
			}
			return err
		}

		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.log.Warn("bad server message", zap.Error(err))
			continue
		}
		c.Handle(env)
	}
}

// Handle applies one server event to the view model. Events are applied in
// arrival order; this is the only place server state reaches the UI.
func (c *Client) Handle(env protocol.Envelope) {
	c.mu.Lock()
	c.apply(env)
	update := c.OnUpdate
	c.mu.Unlock()
	if update != nil {
		update()
	}
}

func (c *Client) apply(env protocol.Envelope) {
	switch env.Type {
	case protocol.EvtGameCreated:
		var p protocol.GameCreated
		if err := env.Bind(&p); err != nil {
			c.log.Warn("bad payload", zap.String("event", string(env.Type)), zap.Error(err))
			return
		}
		c.session.GameID = p.GameID
		c.session.PlayerID = p.PlayerID
		c.session.PlayerName = p.PlayerName
		c.session.IsHost = true
		c.page.GameCode = p.GameID
		c.view.Show(view.ScreenLobby)
		c.view.HostControls = true
		c.view.GuestControls = false

	case protocol.EvtGameJoined:
		var p protocol.GameJoined
		if err := env.Bind(&p); err != nil {
			c.log.Warn("bad payload", zap.String("event", string(env.Type)), zap.Error(err))
			return
		}
		c.session.GameID = p.GameID
		c.session.PlayerID = p.PlayerID
		c.session.PlayerName = p.PlayerName
		c.session.IsHost = false
		c.page.GameCode = p.GameID
		c.view.Show(view.ScreenLobby)
		c.view.HostControls = false
		c.view.GuestControls = true

	case protocol.EvtPlayerListUpdate:
		var p protocol.PlayerListUpdate
		if err := env.Bind(&p); err != nil {
			return
		}
		c.page.PlayerCount = len(p.Players)
		c.page.Roster = render.PlayerList(p.Players)

	case protocol.EvtPlayerJoined:
		var p protocol.PlayerJoined
		if err := env.Bind(&p); err != nil {
			return
		}
		c.prompt.Notify(p.PlayerName + " joined the game!")

	case protocol.EvtPlayerLeft:
		var p protocol.PlayerLeft
		if err := env.Bind(&p); err != nil {
			return
		}
		c.prompt.Notify(p.PlayerName + " left the game")
		if p.Players != nil {
			c.page.PlayerCount = len(p.Players)
			c.page.Roster = render.PlayerList(p.Players)
		}

	case protocol.EvtGameStarted:
		c.view.Show(view.ScreenGame)
		c.view.Loading = true
		c.view.QuestionCard = false

	case protocol.EvtNewQuestion:
		var p protocol.NewQuestion
		if err := env.Bind(&p); err != nil {
			return
		}
		c.question = p
		c.view.Loading = false
		c.view.QuestionCard = true
		c.view.Feedback = false
		c.view.WaitingMessage = false
		c.view.NextQuestionButton = false
		c.view.OptionsEnabled = true
		c.page.Question = render.QuestionCard(p, true)
		c.page.Feedback = ""

	case protocol.EvtAnswerResult:
		var p protocol.AnswerResult
		if err := env.Bind(&p); err != nil {
			return
		}
		c.view.Feedback = true
		c.page.Feedback = render.AnswerFeedback(p)

	case protocol.EvtQuestionComplete:
		var p protocol.QuestionComplete
		if err := env.Bind(&p); err != nil {
			return
		}
		c.view.Feedback = true
		c.view.WaitingMessage = false
		c.page.Feedback = render.QuestionResults(p)
		c.page.Leaderboard = render.Leaderboard(p.Leaderboard)
		if c.session.IsHost {
			c.view.NextQuestionButton = true
		}

	case protocol.EvtGameEnded:
		var p protocol.GameEnded
		if err := env.Bind(&p); err != nil {
			return
		}
		c.view.Show(view.ScreenResults)
		c.page.FinalResults = render.FinalResults(p.FinalResults)
		c.page.TotalQuestions = p.TotalQuestions

	case protocol.EvtError:
		var p protocol.ErrorEvent
		if err := env.Bind(&p); err != nil {
			return
		}
		c.prompt.Alert("Error: " + p.Message)

	default:
		c.log.Warn("unknown server event", zap.String("type", string(env.Type)))
	}
}
