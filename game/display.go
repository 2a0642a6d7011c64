package game

import (
	"fmt"
	"strings"
)

func addText(lines []string, row int, hpad int, text string) {
	if row >= len(lines) {
		return
	}
	lines[row] = lines[row] + strings.Repeat(" ", hpad) + text
}

func (s *Session) playerLine(id string, onturn bool) string {
	marker := " "
	if onturn {
		marker = ">"
	}
	name := id
	if name == "" {
		name = "(open seat)"
	}
	if id == s.playerID {
		name += " (you)"
	}
	return fmt.Sprintf("%s %-20s %d", marker, name, s.state.ScoreFor(id))
}

// ToDisplayText renders the board with the players, scores and the local
// rack alongside it.
func (s *Session) ToDisplayText() string {
	bts := strings.Split(s.board.ToDisplayText(), "\n")
	if s.state == nil {
		return strings.Join(bts, "\n")
	}
	hpadding := 3
	vpadding := 1
	st := s.state
	active := st.Status == StatusActive
	addText(bts, vpadding, hpadding, s.playerLine(st.Player1, active && st.CurrentTurn == st.Player1))
	addText(bts, vpadding+1, hpadding, s.playerLine(st.Player2, active && st.CurrentTurn == st.Player2))
	addText(bts, vpadding+3, hpadding, fmt.Sprintf("Status: %v (rev %d)", st.Status, st.Revision))
	addText(bts, vpadding+5, hpadding, "Rack: "+strings.Join(s.rack.Strings(), " "))
	if n := len(s.board.TentativePositions()); n > 0 {
		addText(bts, vpadding+6, hpadding, fmt.Sprintf("Tentative tiles: %d", n))
	}
	return strings.Join(bts, "\n")
}
