package swarm

import (
	"strings"

	"github.com/Suvariii/masisie/internal/domain"
)

// Update is the normalized view of one raw match object. The feed omits
// fields freely, so every field carries a presence flag (or zero value) and
// the engine applies only what is actually there - set-once-stay-set
// semantics live in the engine, not here.
type Update struct {
	Team1      string
	Team2      string
	Tournament string
	Minute     string
	Score      *Score
	Counters   []Counter
}

// Score is a wholesale score observation.
type Score struct {
	S1 int
	S2 int
}

// Counter is one cumulative per-team statistic, in document order.
type Counter struct {
	Name   string
	Totals domain.TeamTotals
}

// Normalize extracts best-effort field values from a raw match object.
//
// Resolution order for team names: the top-level heuristic fields
// (team1_name/team1, string or object-with-name) apply first, then the info
// block's plain-string team1_name/team2_name override them.
func Normalize(game *Node) Update {
	var u Update

	u.Team1 = teamName(game, "team1_name", "team1")
	u.Team2 = teamName(game, "team2_name", "team2")

	info := game.Field("info")
	if info.IsObject() {
		if name, ok := info.Field("team1_name").Str(); ok && name != "" {
			u.Team1 = name
		}
		if name, ok := info.Field("team2_name").Str(); ok && name != "" {
			u.Team2 = name
		}
		u.Tournament = tournament(info)
		if minute, ok := info.Field("current_game_time").Text(); ok {
			u.Minute = minute
		}
		u.Score = score(info.Field("score"))
	}

	u.Counters = counters(game.Field("stats"))
	return u
}

// teamName resolves the first truthy candidate key, accepting either a plain
// string or an object carrying a name field.
func teamName(game *Node, keys ...string) string {
	for _, key := range keys {
		n := game.Field(key)
		if !n.Truthy() {
			continue
		}
		if s, ok := n.Str(); ok {
			return s
		}
		if n.IsObject() {
			if name, ok := n.Field("name").Str(); ok {
				return name
			}
		}
		// first truthy candidate decides, even when nothing usable is inside
		return ""
	}
	return ""
}

func tournament(info *Node) string {
	if league := info.Field("league"); league.Truthy() {
		if s, ok := league.Str(); ok {
			return s
		}
		if league.IsObject() {
			if name, ok := league.Field("name").Str(); ok {
				return name
			}
		}
		return ""
	}
	if name, ok := info.Field("tournament_name").Text(); ok && name != "" {
		return name
	}
	return ""
}

// score accepts the two shapes the feed uses: an "A-B" string split on the
// first hyphen, or an object keyed "1"/"2". Malformed numerics parse as 0.
func score(n *Node) *Score {
	if s, ok := n.Str(); ok {
		if !strings.Contains(s, "-") {
			return nil
		}
		a, b, _ := strings.Cut(s, "-")
		return &Score{S1: coerceInt(a), S2: coerceInt(b)}
	}
	if n.IsObject() {
		return &Score{S1: n.Field("1").Int(), S2: n.Field("2").Int()}
	}
	return nil
}

func counters(stats *Node) []Counter {
	if !stats.IsObject() {
		return nil
	}
	var res []Counter
	for _, f := range stats.Fields() {
		if !f.Value.IsObject() {
			continue
		}
		_, has1 := f.Value.index["team1_value"]
		_, has2 := f.Value.index["team2_value"]
		if !has1 && !has2 {
			continue
		}
		res = append(res, Counter{
			Name: f.Key,
			Totals: domain.TeamTotals{
				Team1: f.Value.Field("team1_value").Int(),
				Team2: f.Value.Field("team2_value").Int(),
			},
		})
	}
	return res
}
