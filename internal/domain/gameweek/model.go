package gameweek

import "fmt"

// Gameweek tracks the upstream completion flags for one scoring window.
// Both flags only ever move from false to true within a season.
type Gameweek struct {
	ID          int
	BonusAdded  bool
	DataChecked bool
}

// Finished reports whether the window is fully settled upstream. It is
// derived, never stored, so the two source flags stay authoritative.
func (g Gameweek) Finished() bool {
	return g.BonusAdded && g.DataChecked
}

func (g Gameweek) Validate() error {
	if g.ID <= 0 {
		return fmt.Errorf("gameweek id must be greater than zero")
	}
	return nil
}
