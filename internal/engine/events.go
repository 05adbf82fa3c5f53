package engine

import (
	"github.com/Suvariii/masisie/internal/domain"
	"github.com/Suvariii/masisie/internal/swarm"
)

// Counter-to-event tables per sport. A counter missing from the active
// sport's table never produces an event, whatever its delta.
var soccerEvents = map[string]string{
	"attack":           "ATTACK",
	"dangerous_attack": "DANGEROUS_ATTACK",
	"corner":           "CORNER",
	"free_kick":        "FREE_KICK_ZONE",
	"shot_on_target":   "SHOT_ON_TARGET",
	"ballSafe":         "SAFE_POSSESSION",
	"throw_in":         "THROW_IN",
	"foul":             "FOUL",
	"penalty":          "PENALTY",
}

var basketballEvents = map[string]string{
	"attack":         "ATTACK",
	"shot_on_target": "SHOT_ON_TARGET",
	"foul":           "FOUL",
	"free_throw":     "FREE_THROW",
	"turnover":       "TURNOVER",
	"rebound":        "REBOUND",
	"three_point":    "THREE_POINT",
	"two_point":      "TWO_POINT",
}

// eventTable falls back to the soccer table for unknown sports.
func eventTable(sport domain.Sport) map[string]string {
	if sport == domain.SportBasketball {
		return basketballEvents
	}
	return soccerEvents
}

// burstDelta is the combined delta at which a soccer attack counter jump is
// treated as a burst of play and emitted twice.
const burstDelta = 3

func isBurstCounter(name string) bool {
	return name == "attack" || name == "dangerous_attack"
}

// deriveEvents compares new counter totals against the match's stored ones
// and emits one event per mapped counter whose delta is positive. The stored
// counters are read only - the caller replaces them after derivation.
func deriveEvents(m *domain.Match, counters []swarm.Counter, ts int64) []domain.Event {
	table := eventTable(m.Sport)
	var events []domain.Event
	for _, c := range counters {
		etype, ok := table[c.Name]
		if !ok {
			continue
		}
		prev := m.Counters[c.Name]
		d1 := c.Totals.Team1 - prev.Team1
		d2 := c.Totals.Team2 - prev.Team2
		if d1 <= 0 && d2 <= 0 {
			continue
		}
		team := 1
		if d1 < d2 {
			team = 2
		}
		repeat := 1
		if m.Sport == domain.SportSoccer && isBurstCounter(c.Name) && d1+d2 >= burstDelta {
			repeat = 2
		}
		for i := 0; i < repeat; i++ {
			events = append(events, domain.Event{GameID: m.GameID, Type: etype, Team: team, TS: ts})
		}
	}
	return events
}
