// Package protocol defines the wire format shared by the trivia server and
// its clients: a tagged envelope for the realtime channel, plus the
// request/response bodies for the single-player HTTP endpoints.
package protocol

import "encoding/json"

type EventType string

// Client -> Server
const (
	EvtCreateGame   EventType = "create_game"
	EvtJoinGame     EventType = "join_game"
	EvtStartGame    EventType = "start_game"
	EvtSubmitAnswer EventType = "submit_answer"
	EvtNextQuestion EventType = "next_question"
	EvtEndGame      EventType = "end_game"
)

// Server -> Client
const (
	EvtGameCreated      EventType = "game_created"
	EvtGameJoined       EventType = "game_joined"
	EvtPlayerListUpdate EventType = "player_list_update"
	EvtPlayerJoined     EventType = "player_joined"
	EvtPlayerLeft       EventType = "player_left"
	EvtGameStarted      EventType = "game_started"
	EvtNewQuestion      EventType = "new_question"
	EvtAnswerResult     EventType = "answer_result"
	EvtQuestionComplete EventType = "question_complete"
	EvtGameEnded        EventType = "game_ended"
	EvtError            EventType = "error"
)

// Envelope is the framing for every message on the realtime channel. Payload
// holds the event-specific struct below, encoded as JSON.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Pack builds a wire-ready envelope around the given payload.
func Pack(t EventType, payload any) ([]byte, error) {
	env := Envelope{Type: t}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}

// Bind decodes the envelope's payload into v.
func (e Envelope) Bind(v any) error {
	if len(e.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(e.Payload, v)
}

type CreateGame struct {
	PlayerName string `json:"player_name"`
	Difficulty string `json:"difficulty"`
}

type JoinGame struct {
	GameID     string `json:"game_id"`
	PlayerName string `json:"player_name"`
}

type SubmitAnswer struct {
	Answer string `json:"answer"`
}

type GameCreated struct {
	GameID     string `json:"game_id"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

type GameJoined struct {
	GameID     string `json:"game_id"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

// Player is one roster entry. The roster is always sent whole; clients
// replace, never patch.
type Player struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	IsHost bool   `json:"is_host"`
}

type PlayerListUpdate struct {
	Players []Player `json:"players"`
}

type PlayerJoined struct {
	PlayerName string `json:"player_name"`
}

type PlayerLeft struct {
	PlayerName string   `json:"player_name"`
	Players    []Player `json:"players,omitempty"`
}

type NewQuestion struct {
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	QuestionNumber int      `json:"question_number"`
}

type AnswerResult struct {
	IsCorrect    bool   `json:"is_correct"`
	PointsEarned int    `json:"points_earned"`
	YourAnswer   string `json:"your_answer"`
}

type LeaderboardEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type QuestionComplete struct {
	CorrectAnswer string             `json:"correct_answer"`
	Explanation   string             `json:"explanation"`
	Leaderboard   []LeaderboardEntry `json:"leaderboard"`
}

type GameEnded struct {
	FinalResults   []LeaderboardEntry `json:"final_results"`
	TotalQuestions int                `json:"total_questions"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}
