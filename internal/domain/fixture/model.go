package fixture

import (
	"fmt"
	"time"
)

const (
	SideHome = "H"
	SideAway = "A"
)

// Fixture is one match within a gameweek. Rows mutate on every poll while
// the match is live and stop changing once finished; writes are idempotent
// upserts so re-writing a finished fixture is harmless.
type Fixture struct {
	ID             int
	GameweekID     int
	HomeTeamID     int
	AwayTeamID     int
	HomeScore      *int
	AwayScore      *int
	Started        bool
	Finished       bool
	MinutesElapsed int
	KickoffAt      time.Time
}

// Active reports whether the fixture is in its live window, i.e. the delta
// engine should diff its stats this tick.
func (f Fixture) Active() bool {
	return f.Started && !f.Finished
}

func (f Fixture) Validate() error {
	if f.ID <= 0 {
		return fmt.Errorf("fixture id must be greater than zero")
	}
	if f.GameweekID <= 0 {
		return fmt.Errorf("fixture gameweek id must be greater than zero")
	}
	return nil
}

// ValidSide reports whether the value is one of the two recognised side
// markers.
func ValidSide(side string) bool {
	return side == SideHome || side == SideAway
}
