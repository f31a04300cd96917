package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackAndBindRoundTrip(t *testing.T) {
	data, err := Pack(EvtGameCreated, GameCreated{GameID: "ABCD", PlayerID: "p1", PlayerName: "Alice"})
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	require.Equal(t, EvtGameCreated, env.Type)

	var p GameCreated
	require.NoError(t, env.Bind(&p))
	require.Equal(t, "ABCD", p.GameID)
	require.Equal(t, "p1", p.PlayerID)
	require.Equal(t, "Alice", p.PlayerName)
}

func TestPackNilPayloadOmitsIt(t *testing.T) {
	data, err := Pack(EvtStartGame, nil)
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"start_game"}`, string(data))

	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	// Binding an absent payload leaves the target zero-valued.
	var p SubmitAnswer
	require.NoError(t, env.Bind(&p))
	require.Empty(t, p.Answer)
}

func TestWireFormatUsesSnakeCase(t *testing.T) {
	data, err := Pack(EvtQuestionComplete, QuestionComplete{
		CorrectAnswer: "Spielberg",
		Explanation:   "because",
		Leaderboard:   []LeaderboardEntry{{Name: "Alice", Score: 20}},
	})
	require.NoError(t, err)
	require.JSONEq(t,
		`{"type":"question_complete","payload":{"correct_answer":"Spielberg","explanation":"because","leaderboard":[{"name":"Alice","score":20}]}}`,
		string(data))
}

func TestPlayerLeftRosterIsOptional(t *testing.T) {
	data, err := Pack(EvtPlayerLeft, PlayerLeft{PlayerName: "Bob"})
	require.NoError(t, err)
	require.NotContains(t, string(data), "players")
}
