package event

import (
	"fmt"
	"strings"
	"time"

	"github.com/ardhisaif/fpl-live-sync/internal/domain/fixture"
)

// Well-known stat identifiers that carry explicit scoring semantics. The
// upstream treats identifiers as open-ended strings, so anything outside this
// set still flows through the engine untouched.
const (
	TypeGoalsScored     = "goals_scored"
	TypeAssists         = "assists"
	TypeOwnGoals        = "own_goals"
	TypePenaltiesSaved  = "penalties_saved"
	TypePenaltiesMissed = "penalties_missed"
	TypeYellowCards     = "yellow_cards"
	TypeRedCards        = "red_cards"
	TypeSaves           = "saves"
	TypeBonus           = "bonus"
)

var knownTypes = map[string]struct{}{
	TypeGoalsScored:     {},
	TypeAssists:         {},
	TypeOwnGoals:        {},
	TypePenaltiesSaved:  {},
	TypePenaltiesMissed: {},
	TypeYellowCards:     {},
	TypeRedCards:        {},
	TypeSaves:           {},
	TypeBonus:           {},
}

// KnownType reports whether the identifier maps to explicit event semantics.
// Unknown identifiers are passed through, not dropped, so new upstream stat
// types need no code change here.
func KnownType(identifier string) bool {
	_, ok := knownTypes[identifier]
	return ok
}

// Event is one observed increment of a cumulative stat. The event log is
// append-only and immutable: Delta is the increase between two consecutive
// polls, never the cumulative total, and OccurredAt is the observation time,
// not the real-world match clock.
type Event struct {
	GameweekID int
	FixtureID  int
	Type       string
	PlayerID   int
	Delta      int
	Side       string
	OccurredAt time.Time
}

func (e Event) Validate() error {
	if e.GameweekID <= 0 {
		return fmt.Errorf("event gameweek id must be greater than zero")
	}
	if e.FixtureID <= 0 {
		return fmt.Errorf("event fixture id must be greater than zero")
	}
	if strings.TrimSpace(e.Type) == "" {
		return fmt.Errorf("event type is required")
	}
	if e.PlayerID <= 0 {
		return fmt.Errorf("event player id must be greater than zero")
	}
	if e.Delta <= 0 {
		return fmt.Errorf("event delta must be greater than zero")
	}
	if !fixture.ValidSide(e.Side) {
		return fmt.Errorf("event side must be %q or %q", fixture.SideHome, fixture.SideAway)
	}
	return nil
}
