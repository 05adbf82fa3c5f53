package domain

import "fmt"

// --- Wire messages pushed to frontend subscribers ---

// MatchSummary is the per-match entry of a snapshot message.
type MatchSummary struct {
	GameID       string `json:"game_id"`
	Title        string `json:"title"`
	Team1        string `json:"team1"`
	Team2        string `json:"team2"`
	Score1       int    `json:"score1"`
	Score2       int    `json:"score2"`
	Minute       string `json:"minute"`
	Sport        Sport  `json:"sport"`
	Tournament   string `json:"tournament"`
	IsLive       int    `json:"is_live"`
	LastUpdateMS int64  `json:"last_update_ms"`
}

// Summary converts a Match into its snapshot representation.
func (m *Match) Summary() MatchSummary {
	return MatchSummary{
		GameID:       m.GameID,
		Title:        fmt.Sprintf("%s vs %s", m.Team1, m.Team2),
		Team1:        m.Team1,
		Team2:        m.Team2,
		Score1:       m.Score1,
		Score2:       m.Score2,
		Minute:       m.CurrentTime,
		Sport:        m.Sport,
		Tournament:   m.Tournament,
		IsLive:       m.IsLive,
		LastUpdateMS: m.LastUpdateMS,
	}
}

// MatchesMessage is the full-snapshot broadcast payload.
type MatchesMessage struct {
	Type    string         `json:"type"`
	Matches []MatchSummary `json:"matches"`
}

// EventsMessage carries the events derived from one ingest frame.
type EventsMessage struct {
	Type   string  `json:"type"`
	Events []Event `json:"events"`
}

func NewMatchesMessage(matches []MatchSummary) MatchesMessage {
	if matches == nil {
		matches = []MatchSummary{}
	}
	return MatchesMessage{Type: "matches", Matches: matches}
}

func NewEventsMessage(events []Event) EventsMessage {
	return EventsMessage{Type: "events", Events: events}
}
