package rawstat

import (
	"fmt"
	"strings"

	"github.com/ardhisaif/fpl-live-sync/internal/domain/fixture"
)

// Value is the last reported cumulative count of one stat identifier for one
// player on one side of one fixture. This is the quantity the delta engine
// diffs against, and the durable baseline a restarted session reloads.
type Value struct {
	FixtureID  int
	GameweekID int
	Identifier string
	Side       string
	PlayerID   int
	Value      int
}

func (v Value) Validate() error {
	if v.FixtureID <= 0 {
		return fmt.Errorf("raw stat fixture id must be greater than zero")
	}
	if strings.TrimSpace(v.Identifier) == "" {
		return fmt.Errorf("raw stat identifier is required")
	}
	if !fixture.ValidSide(v.Side) {
		return fmt.Errorf("raw stat side must be %q or %q", fixture.SideHome, fixture.SideAway)
	}
	if v.PlayerID <= 0 {
		return fmt.Errorf("raw stat player id must be greater than zero")
	}
	return nil
}
