package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pkeller/movie-trivia/pkg/protocol"
)

func TestPlayerListRendering(t *testing.T) {
	players := []protocol.Player{
		{Name: "Alice", Score: 20, IsHost: true},
		{Name: "Bob", Score: 0},
	}

	html := PlayerList(players)
	require.Contains(t, html, "Players (2)")
	require.Contains(t, html, "Alice")
	require.Contains(t, html, "👑 Host")
	require.Contains(t, html, "20 pts")
	// Only the host line carries the badge.
	require.Equal(t, 1, strings.Count(html, "host-badge"))
}

// Rendering is a pure function of the payload; the same payload twice gives
// byte-identical fragments.
func TestRenderingIsIdempotent(t *testing.T) {
	players := []protocol.Player{{Name: "Alice", Score: 5, IsHost: true}}
	entries := []protocol.LeaderboardEntry{{Name: "Alice", Score: 5}, {Name: "Bob", Score: 3}}
	q := protocol.NewQuestion{Question: "Q?", Options: []string{"a", "b", "c", "d"}, QuestionNumber: 2}

	require.Equal(t, PlayerList(players), PlayerList(players))
	require.Equal(t, Leaderboard(entries), Leaderboard(entries))
	require.Equal(t, FinalResults(entries), FinalResults(entries))
	require.Equal(t, QuestionCard(q, true), QuestionCard(q, true))
}

func TestServerTextIsEscaped(t *testing.T) {
	players := []protocol.Player{{Name: `<script>alert("x")</script>`, Score: 0}}
	html := PlayerList(players)
	require.NotContains(t, html, "<script>")
	require.Contains(t, html, "&lt;script&gt;")

	q := protocol.NewQuestion{Question: `1 < 2 & "so on"`, Options: []string{"<b>bold</b>"}, QuestionNumber: 1}
	card := QuestionCard(q, true)
	require.NotContains(t, card, "<b>bold</b>")
}

func TestQuestionCardDisablesOptions(t *testing.T) {
	q := protocol.NewQuestion{Question: "Q?", Options: []string{"a", "b"}, QuestionNumber: 1}

	enabled := QuestionCard(q, true)
	require.NotContains(t, enabled, "disabled")

	locked := QuestionCard(q, false)
	require.Equal(t, 2, strings.Count(locked, "disabled"))
}

func TestRankMarkers(t *testing.T) {
	entries := []protocol.LeaderboardEntry{
		{Name: "first", Score: 40},
		{Name: "second", Score: 30},
		{Name: "third", Score: 20},
		{Name: "fourth", Score: 10},
		{Name: "fifth", Score: 5},
	}

	html := Leaderboard(entries)
	require.Contains(t, html, "🥇")
	require.Contains(t, html, "🥈")
	require.Contains(t, html, "🥉")
	require.Contains(t, html, ">4.<")
	require.Contains(t, html, ">5.<")

	final := FinalResults(entries)
	require.Contains(t, final, "🥇")
	require.Contains(t, final, "40 points")
}

func TestAnswerFeedback(t *testing.T) {
	correct := AnswerFeedback(protocol.AnswerResult{IsCorrect: true, PointsEarned: 17})
	require.Contains(t, correct, "Correct! +17 points")

	wrong := AnswerFeedback(protocol.AnswerResult{IsCorrect: false, YourAnswer: "Lucas"})
	require.Contains(t, wrong, "Incorrect")
	require.Contains(t, wrong, "You answered: Lucas")
}

func TestSoloFeedback(t *testing.T) {
	correct := SoloFeedback(protocol.CheckAnswerResponse{
		Correct:     true,
		Explanation: "Jaws was his breakout.",
	}, "Spielberg")
	require.Contains(t, correct, "Correct!")
	require.NotContains(t, correct, "points")
	require.Contains(t, correct, "Jaws was his breakout.")

	wrong := SoloFeedback(protocol.CheckAnswerResponse{
		Correct:       false,
		CorrectAnswer: "Spielberg",
	}, "<Lucas>")
	require.Contains(t, wrong, "Incorrect")
	require.Contains(t, wrong, "You answered: &lt;Lucas&gt;")
	require.Contains(t, wrong, "Correct Answer:</strong> Spielberg")
}

func TestQuestionResults(t *testing.T) {
	html := QuestionResults(protocol.QuestionComplete{
		CorrectAnswer: "Spielberg",
		Explanation:   "Jaws was his breakout.",
	})
	require.Contains(t, html, "Correct Answer:</strong> Spielberg")
	require.Contains(t, html, "Jaws was his breakout.")
}
