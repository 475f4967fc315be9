package livestat

import "fmt"

// PlayerStat is the cumulative per-player counter snapshot for one gameweek,
// as reported by the upstream as of the last poll. It is fully overwritten on
// every poll; it is a point-in-time snapshot, never a delta.
type PlayerStat struct {
	GameweekID      int
	PlayerID        int
	Minutes         int
	GoalsScored     int
	Assists         int
	CleanSheets     int
	GoalsConceded   int
	OwnGoals        int
	PenaltiesSaved  int
	PenaltiesMissed int
	YellowCards     int
	RedCards        int
	Saves           int
	Bonus           int
	BPS             int
	TotalPoints     int
}

func (s PlayerStat) Validate() error {
	if s.GameweekID <= 0 {
		return fmt.Errorf("live stat gameweek id must be greater than zero")
	}
	if s.PlayerID <= 0 {
		return fmt.Errorf("live stat player id must be greater than zero")
	}
	return nil
}
