// Package render maps server payloads to HTML fragments. Every function is a
// pure function of its payload: fragments are rebuilt wholesale on each call,
// so rendering the same payload twice yields the same markup.
package render

import (
	htmlpkg "html"
	"strconv"
	"strings"

	"github.com/pkeller/movie-trivia/pkg/protocol"
)

// PlayerList generates the lobby roster fragment.
func PlayerList(players []protocol.Player) string {
	var b strings.Builder
	b.WriteString(`<div class="players-header">Players (`)
	b.WriteString(strconv.Itoa(len(players)))
	b.WriteString(`)</div>`)
	for _, p := range players {
		b.WriteString(`<div class="player-item"><span class="player-name">`)
		b.WriteString(htmlpkg.EscapeString(p.Name))
		b.WriteString(`</span>`)
		if p.IsHost {
			b.WriteString(`<span class="host-badge">👑 Host</span>`)
		}
		b.WriteString(`<span class="player-score">`)
		b.WriteString(strconv.Itoa(p.Score))
		b.WriteString(` pts</span></div>`)
	}
	return b.String()
}

// QuestionCard generates the question plus its option controls. Disabled
// options render without click affordance, which is how submission lockout
// shows up on screen.
func QuestionCard(q protocol.NewQuestion, optionsEnabled bool) string {
	var b strings.Builder
	b.WriteString(`<div class="question-number">Question `)
	b.WriteString(strconv.Itoa(q.QuestionNumber))
	b.WriteString(`</div><div class="question-text">`)
	b.WriteString(htmlpkg.EscapeString(q.Question))
	b.WriteString(`</div><div class="options">`)
	for _, opt := range q.Options {
		b.WriteString(`<button class="option-btn"`)
		if !optionsEnabled {
			b.WriteString(` disabled`)
		}
		b.WriteString(`>`)
		b.WriteString(htmlpkg.EscapeString(opt))
		b.WriteString(`</button>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

// AnswerFeedback generates the private correct/incorrect banner.
func AnswerFeedback(r protocol.AnswerResult) string {
	var b strings.Builder
	if r.IsCorrect {
		b.WriteString(`<div class="feedback correct"><h3>✅ Correct! +`)
		b.WriteString(strconv.Itoa(r.PointsEarned))
		b.WriteString(` points</h3><p>Great job!</p></div>`)
	} else {
		b.WriteString(`<div class="feedback incorrect"><h3>❌ Incorrect</h3><p>You answered: `)
		b.WriteString(htmlpkg.EscapeString(r.YourAnswer))
		b.WriteString(`</p></div>`)
	}
	return b.String()
}

// SoloFeedback generates the single-player grading banner. There are no
// points in this mode, and with nobody else to wait for an incorrect answer
// reveals the correct one immediately.
func SoloFeedback(r protocol.CheckAnswerResponse, yourAnswer string) string {
	var b strings.Builder
	if r.Correct {
		b.WriteString(`<div class="feedback correct"><h3>✅ Correct!</h3><p>Great job!</p>`)
	} else {
		b.WriteString(`<div class="feedback incorrect"><h3>❌ Incorrect</h3><p>You answered: `)
		b.WriteString(htmlpkg.EscapeString(yourAnswer))
		b.WriteString(`</p><p><strong>Correct Answer:</strong> `)
		b.WriteString(htmlpkg.EscapeString(r.CorrectAnswer))
		b.WriteString(`</p>`)
	}
	if r.Explanation != "" {
		b.WriteString(`<p class="explanation">`)
		b.WriteString(htmlpkg.EscapeString(r.Explanation))
		b.WriteString(`</p>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

// QuestionResults generates the end-of-round reveal.
func QuestionResults(qc protocol.QuestionComplete) string {
	var b strings.Builder
	b.WriteString(`<div class="feedback results"><h3>📊 Question Results</h3><p><strong>Correct Answer:</strong> `)
	b.WriteString(htmlpkg.EscapeString(qc.CorrectAnswer))
	b.WriteString(`</p><p class="explanation">`)
	b.WriteString(htmlpkg.EscapeString(qc.Explanation))
	b.WriteString(`</p></div>`)
	return b.String()
}

// Leaderboard generates the compact in-game standings.
func Leaderboard(entries []protocol.LeaderboardEntry) string {
	var b strings.Builder
	for i, e := range entries {
		b.WriteString(`<div class="leaderboard-item"><span class="rank">`)
		b.WriteString(rankMarker(i))
		b.WriteString(`</span><span class="name">`)
		b.WriteString(htmlpkg.EscapeString(e.Name))
		b.WriteString(`</span><span class="score">`)
		b.WriteString(strconv.Itoa(e.Score))
		b.WriteString(`</span></div>`)
	}
	return b.String()
}

// FinalResults generates the results-screen standings.
func FinalResults(entries []protocol.LeaderboardEntry) string {
	var b strings.Builder
	for i, e := range entries {
		b.WriteString(`<div class="final-result-item"><span class="rank-large">`)
		b.WriteString(rankMarker(i))
		b.WriteString(`</span><div class="player-info"><div class="player-name-large">`)
		b.WriteString(htmlpkg.EscapeString(e.Name))
		b.WriteString(`</div><div class="player-score-large">`)
		b.WriteString(strconv.Itoa(e.Score))
		b.WriteString(` points</div></div></div>`)
	}
	return b.String()
}

// rankMarker maps position to its display marker: medals for the podium, an
// ordinal for everyone else. Ties are already resolved server-side, so
// position alone determines rank.
func rankMarker(i int) string {
	switch i {
	case 0:
		return "🥇"
	case 1:
		return "🥈"
	case 2:
		return "🥉"
	default:
		return strconv.Itoa(i+1) + "."
	}
}
