package game

import "sort"

// ScoreRow is one leaderboard line.
type ScoreRow struct {
	Name  string
	Score int
}

// Leaderboard orders players by score descending, name ascending on ties, so
// every client sees the same total order and rank falls out of position.
func Leaderboard(s State) []ScoreRow {
	rows := make([]ScoreRow, 0, len(s.Players))
	for _, p := range s.Players {
		rows = append(rows, ScoreRow{Name: p.Name, Score: p.Score})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

// Roster lists players in join order, host first by construction.
func Roster(s State) []Player {
	out := make([]Player, 0, len(s.JoinOrder))
	for _, id := range s.JoinOrder {
		if p, ok := s.Players[id]; ok {
			out = append(out, p)
		}
	}
	return out
}
