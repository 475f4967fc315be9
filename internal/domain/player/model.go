package player

import (
	"fmt"
	"strings"
)

const (
	PositionGoalkeeper = "GK"
	PositionDefender   = "DEF"
	PositionMidfielder = "MID"
	PositionForward    = "FWD"
)

// Player is bootstrap reference data keyed by the upstream element id.
type Player struct {
	ID       int
	TeamID   int
	Name     string
	WebName  string
	Position string
}

func (p Player) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("player id must be greater than zero")
	}
	if strings.TrimSpace(p.Name) == "" && strings.TrimSpace(p.WebName) == "" {
		return fmt.Errorf("player name is required")
	}
	return nil
}

// NormalizePosition maps the upstream element_type ordinal to a position code.
func NormalizePosition(elementType int) string {
	switch elementType {
	case 1:
		return PositionGoalkeeper
	case 2:
		return PositionDefender
	case 3:
		return PositionMidfielder
	case 4:
		return PositionForward
	default:
		return ""
	}
}
