package usecase

import (
	"strconv"
	"sync"

	"github.com/valyala/bytebufferpool"

	"github.com/ardhisaif/fpl-live-sync/internal/domain/rawstat"
)

// DeltaTracker holds the last observed cumulative value per stat line for one
// poll session. It is the comparison baseline the engine diffs against; each
// session owns its own tracker so concurrent gameweeks never share state.
type DeltaTracker struct {
	mu   sync.Mutex
	last map[string]int
}

func NewDeltaTracker() *DeltaTracker {
	return &DeltaTracker{last: make(map[string]int)}
}

// Seed primes the baseline from stored raw stat values without emitting
// anything. A restarted session replays the durable baseline through here so
// already-recorded increments are not observed a second time.
func (t *DeltaTracker) Seed(values []rawstat.Value) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, v := range values {
		t.last[statKey(v.FixtureID, v.Identifier, v.Side, v.PlayerID)] = v.Value
	}
}

// Apply compares the reported cumulative value against the baseline and
// advances the baseline to the reported value unconditionally. The returned
// delta is reported minus baseline; an unseen stat line has baseline zero.
func (t *DeltaTracker) Apply(fixtureID int, identifier, side string, playerID, value int) int {
	key := statKey(fixtureID, identifier, side, playerID)

	t.mu.Lock()
	defer t.mu.Unlock()

	delta := value - t.last[key]
	t.last[key] = value
	return delta
}

// Size reports the number of tracked stat lines.
func (t *DeltaTracker) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.last)
}

func statKey(fixtureID int, identifier, side string, playerID int) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.B = strconv.AppendInt(buf.B, int64(fixtureID), 10)
	buf.B = append(buf.B, '|')
	buf.B = append(buf.B, identifier...)
	buf.B = append(buf.B, '|')
	buf.B = append(buf.B, side...)
	buf.B = append(buf.B, '|')
	buf.B = strconv.AppendInt(buf.B, int64(playerID), 10)
	return buf.String()
}
