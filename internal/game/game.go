// Package game holds the trivia-round state machine as a pure reducer:
// Apply takes the current state and a command and returns the events to emit,
// the next state, and an error. All I/O (question generation, fan-out) lives
// in the room layer above.
package game

import (
	"errors"
	"slices"
	"time"

	"github.com/pkeller/movie-trivia/internal/question"
)

var ErrGameInProgress = errors.New("game already in progress")
var ErrGameNotStarted = errors.New("game not started")
var ErrGameFinished = errors.New("game already finished")
var ErrNotHost = errors.New("only the host may do that")
var ErrNotInGame = errors.New("player not in game")
var ErrAlreadyAnswered = errors.New("already answered this question")
var ErrNoActiveQuestion = errors.New("no active question")
var ErrUnsupportedCommand = errors.New("unsupported command")

type Lifecycle string

const (
	StateWaiting  Lifecycle = "waiting"
	StatePlaying  Lifecycle = "playing"
	StateFinished Lifecycle = "finished"
)

type Player struct {
	ID       string
	Name     string
	Score    int
	Answered bool
	IsHost   bool
}

type State struct {
	Lifecycle         Lifecycle
	Difficulty        question.Difficulty
	Players           map[string]Player
	JoinOrder         []string
	Current           *question.Question
	QuestionStartedAt time.Time
	QuestionCount     int
	AskedTopics       []string
}

func NewState(d question.Difficulty) State {
	return State{
		Lifecycle:  StateWaiting,
		Difficulty: d,
		Players:    map[string]Player{},
	}
}

type CommandType string

const (
	CmdJoin         CommandType = "Join"
	CmdLeave        CommandType = "Leave"
	CmdStart        CommandType = "Start"
	CmdPoseQuestion CommandType = "PoseQuestion"
	CmdSubmitAnswer CommandType = "SubmitAnswer"
	CmdNextQuestion CommandType = "NextQuestion"
	CmdEnd          CommandType = "End"
)

type Command struct {
	Type       CommandType
	PlayerID   string
	PlayerName string
	Answer     string
	Question   question.Question
	At         time.Time
}

type EventType string

const (
	EvtPlayerJoined      EventType = "PlayerJoined"
	EvtPlayerLeft        EventType = "PlayerLeft"
	EvtRosterChanged     EventType = "RosterChanged"
	EvtGameStarted       EventType = "GameStarted"
	EvtQuestionPosed     EventType = "QuestionPosed"
	EvtAnswerScored      EventType = "AnswerScored"
	EvtQuestionCompleted EventType = "QuestionCompleted"
	EvtNextRequested     EventType = "NextRequested"
	EvtGameEnded         EventType = "GameEnded"
	EvtRoomEmptied       EventType = "RoomEmptied"
)

type Event struct {
	Type       EventType
	PlayerID   string
	PlayerName string
	IsCorrect  bool
	Points     int
	Answer     string
}

func Apply(s State, cmd Command) ([]Event, State, error) {
	switch cmd.Type {
	case CmdJoin:
		if s.Lifecycle != StateWaiting {
			return nil, s, ErrGameInProgress
		}
		ns := clone(s)
		ns.Players[cmd.PlayerID] = Player{
			ID:     cmd.PlayerID,
			Name:   cmd.PlayerName,
			IsHost: len(s.Players) == 0,
		}
		ns.JoinOrder = append(ns.JoinOrder, cmd.PlayerID)
		events := []Event{
			{Type: EvtPlayerJoined, PlayerID: cmd.PlayerID, PlayerName: cmd.PlayerName},
			{Type: EvtRosterChanged},
		}
		return events, ns, nil

	case CmdLeave:
		p, ok := s.Players[cmd.PlayerID]
		if !ok {
			// Disconnects can race with removal; nothing to do.
			return nil, s, nil
		}
		ns := clone(s)
		delete(ns.Players, cmd.PlayerID)
		ns.JoinOrder = slices.DeleteFunc(ns.JoinOrder, func(id string) bool { return id == cmd.PlayerID })
		if len(ns.Players) == 0 {
			return []Event{{Type: EvtRoomEmptied}}, ns, nil
		}
		events := []Event{
			{Type: EvtPlayerLeft, PlayerID: p.ID, PlayerName: p.Name},
			{Type: EvtRosterChanged},
		}
		return events, ns, nil

	case CmdStart:
		if err := requireHost(s, cmd.PlayerID); err != nil {
			return nil, s, err
		}
		if s.Lifecycle != StateWaiting {
			return nil, s, ErrGameInProgress
		}
		ns := clone(s)
		ns.Lifecycle = StatePlaying
		return []Event{{Type: EvtGameStarted}, {Type: EvtNextRequested}}, ns, nil

	case CmdPoseQuestion:
		if s.Lifecycle != StatePlaying {
			return nil, s, ErrGameNotStarted
		}
		ns := clone(s)
		q := cmd.Question
		ns.Current = &q
		ns.QuestionStartedAt = cmd.At
		ns.QuestionCount++
		for id, p := range ns.Players {
			p.Answered = false
			ns.Players[id] = p
		}
		if q.Topic != "" && !slices.Contains(ns.AskedTopics, q.Topic) {
			ns.AskedTopics = append(ns.AskedTopics, q.Topic)
		}
		return []Event{{Type: EvtQuestionPosed}}, ns, nil

	case CmdSubmitAnswer:
		p, ok := s.Players[cmd.PlayerID]
		if !ok {
			return nil, s, ErrNotInGame
		}
		if s.Current == nil {
			return nil, s, ErrNoActiveQuestion
		}
		if p.Answered {
			return nil, s, ErrAlreadyAnswered
		}

		ns := clone(s)
		correct := cmd.Answer == s.Current.CorrectAnswer
		points := 0
		if correct {
			points = 10 + timeBonus(cmd.At.Sub(s.QuestionStartedAt))
		}
		p.Answered = true
		p.Score += points
		ns.Players[cmd.PlayerID] = p

		events := []Event{{
			Type:      EvtAnswerScored,
			PlayerID:  cmd.PlayerID,
			IsCorrect: correct,
			Points:    points,
			Answer:    cmd.Answer,
		}}
		if allAnswered(ns) {
			events = append(events, Event{Type: EvtQuestionCompleted})
		}
		return events, ns, nil

	case CmdNextQuestion:
		if err := requireHost(s, cmd.PlayerID); err != nil {
			return nil, s, err
		}
		if s.Lifecycle != StatePlaying {
			return nil, s, ErrGameNotStarted
		}
		return []Event{{Type: EvtNextRequested}}, s, nil

	case CmdEnd:
		if err := requireHost(s, cmd.PlayerID); err != nil {
			return nil, s, err
		}
		if s.Lifecycle == StateFinished {
			return nil, s, ErrGameFinished
		}
		ns := clone(s)
		ns.Lifecycle = StateFinished
		return []Event{{Type: EvtGameEnded}}, ns, nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

// timeBonus rewards fast answers: up to 10 extra points, decaying one point
// every two seconds.
func timeBonus(elapsed time.Duration) int {
	bonus := 10 - int(elapsed.Seconds())/2
	if bonus < 0 {
		return 0
	}
	if bonus > 10 {
		return 10
	}
	return bonus
}

func requireHost(s State, playerID string) error {
	p, ok := s.Players[playerID]
	if !ok {
		return ErrNotInGame
	}
	if !p.IsHost {
		return ErrNotHost
	}
	return nil
}

func allAnswered(s State) bool {
	for _, p := range s.Players {
		if !p.Answered {
			return false
		}
	}
	return len(s.Players) > 0
}

func clone(s State) State {
	ns := s
	ns.Players = make(map[string]Player, len(s.Players))
	for id, p := range s.Players {
		ns.Players[id] = p
	}
	ns.JoinOrder = slices.Clone(s.JoinOrder)
	ns.AskedTopics = slices.Clone(s.AskedTopics)
	return ns
}
