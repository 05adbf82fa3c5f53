package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Suvariii/masisie/internal/domain"
	"github.com/Suvariii/masisie/internal/swarm"
)

func newTestEngine(t *testing.T, snapshotLimit int) (*Engine, clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	e := New(clock, []string{"2", "3"}, snapshotLimit)
	t.Cleanup(e.Stop)
	return e, clock
}

func applyJSON(t *testing.T, e *Engine, doc string) []domain.Event {
	t.Helper()
	env, err := swarm.Parse([]byte(doc))
	require.NoError(t, err)
	return e.Apply(env)
}

func gameEnvelope(gid, body string) string {
	return fmt.Sprintf(`{"data":{"game":{%q:%s}}}`, gid, body)
}

func TestUpsert_Idempotent(t *testing.T) {
	e, _ := newTestEngine(t, 250)

	first := e.upsert("g1", 1)
	second := e.upsert("g1", 2)

	assert.Same(t, first, second)
	assert.Len(t, e.matches, 1)
}

func TestApply_CreatesMatchWithDefaults(t *testing.T) {
	e, _ := newTestEngine(t, 250)

	applyJSON(t, e, gameEnvelope("g1", `{}`))

	snap := e.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "g1", snap[0].GameID)
	assert.Equal(t, "Team 1", snap[0].Team1)
	assert.Equal(t, "Team 2", snap[0].Team2)
	assert.Equal(t, "-", snap[0].Tournament)
	assert.Equal(t, domain.SportSoccer, snap[0].Sport)
	assert.Equal(t, "Team 1 vs Team 2", snap[0].Title)
	assert.Equal(t, 1, snap[0].IsLive)
}

func TestApply_SameIDNeverDuplicates(t *testing.T) {
	e, _ := newTestEngine(t, 250)

	applyJSON(t, e, gameEnvelope("g1", `{"team1_name":"A"}`))
	applyJSON(t, e, gameEnvelope("g1", `{"team1_name":"B"}`))

	assert.Equal(t, 1, e.MatchCount())
	snap := e.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "B", snap[0].Team1)
}

func TestApply_StickyFields(t *testing.T) {
	e, _ := newTestEngine(t, 250)

	applyJSON(t, e, gameEnvelope("g1", `{"info":{"current_game_time":"12","tournament_name":"Cup"}}`))
	applyJSON(t, e, gameEnvelope("g1", `{"info":{}}`))

	snap := e.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "12", snap[0].Minute)
	assert.Equal(t, "Cup", snap[0].Tournament)
}

func TestApply_ScoreReplacedNotMerged(t *testing.T) {
	e, _ := newTestEngine(t, 250)

	applyJSON(t, e, gameEnvelope("g1", `{"info":{"score":"1-0"}}`))
	applyJSON(t, e, gameEnvelope("g1", `{"info":{"score":"1-1"}}`))

	snap := e.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, 1, snap[0].Score1)
	assert.Equal(t, 1, snap[0].Score2)
}

func TestApply_SportFromTaxonomyID(t *testing.T) {
	e, _ := newTestEngine(t, 250)

	applyJSON(t, e, `{"data":{"sport":{"3":{"game":{"g1":{}}}}}}`)
	snap := e.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, domain.SportBasketball, snap[0].Sport)

	// the source may re-tag a match on a later update
	applyJSON(t, e, `{"data":{"sport":{"1":{"game":{"g1":{}}}}}}`)
	snap = e.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, domain.SportSoccer, snap[0].Sport)
}

func TestApply_DerivesEventsFromCounterDeltas(t *testing.T) {
	e, clock := newTestEngine(t, 250)

	// first sighting: previous counters are zero, so totals become deltas
	events := applyJSON(t, e, gameEnvelope("g1",
		`{"stats":{"corner":{"team1_value":0,"team2_value":0}}}`))
	assert.Empty(t, events)

	events = applyJSON(t, e, gameEnvelope("g1",
		`{"stats":{"corner":{"team1_value":1,"team2_value":1}}}`))
	require.Len(t, events, 1)
	assert.Equal(t, "CORNER", events[0].Type)
	assert.Equal(t, 1, events[0].Team)
	assert.Equal(t, clock.Now().UnixMilli(), events[0].TS)
}

func TestApply_BurstDoubling(t *testing.T) {
	e, _ := newTestEngine(t, 250)

	applyJSON(t, e, gameEnvelope("g1",
		`{"stats":{"attack":{"team1_value":2,"team2_value":1}}}`))

	events := applyJSON(t, e, gameEnvelope("g1",
		`{"stats":{"attack":{"team1_value":5,"team2_value":1}}}`))
	require.Len(t, events, 2)
	assert.Equal(t, "ATTACK", events[0].Type)
	assert.Equal(t, 1, events[0].Team)
	assert.Equal(t, events[0], events[1])
}

func TestApply_CounterReplaceUsesPreReplaceDelta(t *testing.T) {
	e, _ := newTestEngine(t, 250)

	applyJSON(t, e, gameEnvelope("g1",
		`{"stats":{"corner":{"team1_value":2,"team2_value":0}}}`))

	// replaying the same totals produces no delta, hence no events
	events := applyJSON(t, e, gameEnvelope("g1",
		`{"stats":{"corner":{"team1_value":2,"team2_value":0}}}`))
	assert.Empty(t, events)
}

func TestApply_UnknownCountersIgnored(t *testing.T) {
	e, _ := newTestEngine(t, 250)

	events := applyJSON(t, e, gameEnvelope("g1",
		`{"stats":{"possession":{"team1_value":70,"team2_value":30}}}`))
	assert.Empty(t, events)
}

func TestApply_EnvelopeWithoutDataIsNoOp(t *testing.T) {
	e, _ := newTestEngine(t, 250)

	assert.Empty(t, applyJSON(t, e, `{"code":0}`))
	assert.Empty(t, applyJSON(t, e, `{"data":"scalar"}`))
	assert.Equal(t, 0, e.MatchCount())
}

func TestSnapshot_CapAndRecencyOrder(t *testing.T) {
	e, clock := newTestEngine(t, 250)

	for i := 0; i < 300; i++ {
		clock.Advance(time.Millisecond)
		applyJSON(t, e, gameEnvelope(fmt.Sprintf("g%03d", i), `{}`))
	}

	snap := e.Snapshot()
	require.Len(t, snap, 250)
	assert.Equal(t, "g299", snap[0].GameID)
	for i := 1; i < len(snap); i++ {
		assert.GreaterOrEqual(t, snap[i-1].LastUpdateMS, snap[i].LastUpdateMS)
	}
	assert.Equal(t, 300, e.MatchCount())
}

func TestSnapshot_TiesKeepStableOrder(t *testing.T) {
	e, _ := newTestEngine(t, 250)

	// one frame, one timestamp for every game
	applyJSON(t, e, `{"data":{"game":{"a":{},"b":{},"c":{}}}}`)

	first := e.Snapshot()
	second := e.Snapshot()
	assert.Equal(t, first, second)
}
