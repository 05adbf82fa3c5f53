package domain

// --- Model types ---

// Sport is the category a match belongs to, derived from the taxonomy id
// carried alongside the match in the swarm tree.
type Sport string

const (
	SportSoccer     Sport = "Soccer"
	SportBasketball Sport = "Basketball"
)

// TeamTotals holds one cumulative counter's per-team totals.
type TeamTotals struct {
	Team1 int
	Team2 int
}

// Match is the live state tracked for one fixture. Exactly one Match exists
// per game id; all mutation goes through the engine's single processing path.
type Match struct {
	GameID       string
	Team1        string
	Team2        string
	Tournament   string
	Sport        Sport
	IsLive       int
	CurrentTime  string
	Score1       int
	Score2       int
	Counters     map[string]TeamTotals
	LastUpdateMS int64
}

// NewMatch returns a Match carrying the placeholder fields the frontend
// expects before real data arrives.
func NewMatch(gameID string, now int64) *Match {
	return &Match{
		GameID:       gameID,
		Team1:        "Team 1",
		Team2:        "Team 2",
		Tournament:   "-",
		Sport:        SportSoccer,
		IsLive:       1,
		Counters:     make(map[string]TeamTotals),
		LastUpdateMS: now,
	}
}

// Event is a discrete derived event. Events are ephemeral: constructed,
// broadcast, and discarded within one ingest step, never stored or replayed.
type Event struct {
	GameID string `json:"game_id"`
	Type   string `json:"etype"`
	Team   int    `json:"team"`
	TS     int64  `json:"ts"`
}
