package team

import (
	"fmt"
	"strings"
)

// Team is bootstrap reference data, refreshed on every bootstrap pull and
// shared read-only by all poll sessions.
type Team struct {
	ID        int
	Name      string
	ShortName string
}

func (t Team) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("team id must be greater than zero")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("team name is required")
	}
	return nil
}
