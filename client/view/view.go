// Package view models the client's visible state: which screen is showing
// and which widgets on it are live. It holds no DOM and no network state;
// protocol handlers mutate it and a front-end draws it.
package view

import "fmt"

type Screen string

const (
	ScreenMainMenu   Screen = "mainMenu"
	ScreenCreateGame Screen = "createGameScreen"
	ScreenJoinGame   Screen = "joinGameScreen"
	ScreenLobby      Screen = "lobbyScreen"
	ScreenGame       Screen = "gameScreen"
	ScreenResults    Screen = "resultsScreen"
)

// Screens is the full, closed set of screens. Exactly one is visible at any
// time.
var Screens = []Screen{
	ScreenMainMenu,
	ScreenCreateGame,
	ScreenJoinGame,
	ScreenLobby,
	ScreenGame,
	ScreenResults,
}

// Controller tracks screen visibility plus the per-widget flags the game and
// lobby screens need.
type Controller struct {
	active Screen

	// Lobby widgets
	HostControls  bool
	GuestControls bool

	// Game widgets
	Loading            bool
	QuestionCard       bool
	OptionsEnabled     bool
	Feedback           bool
	WaitingMessage     bool
	NextQuestionButton bool
}

func NewController() *Controller {
	return &Controller{active: ScreenMainMenu}
}

// Show hides every screen and reveals exactly the requested one. Passing a
// screen outside the known set is a programming error and panics.
func (c *Controller) Show(s Screen) {
	if !known(s) {
		panic(fmt.Sprintf("view: unknown screen %q", s))
	}
	c.active = s
}

func (c *Controller) Active() Screen { return c.active }

func (c *Controller) Visible(s Screen) bool { return c.active == s }

func known(s Screen) bool {
	for _, k := range Screens {
		if k == s {
			return true
		}
	}
	return false
}
