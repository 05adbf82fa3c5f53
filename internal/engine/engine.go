package engine

import (
	"sort"

	"github.com/jonboulle/clockwork"

	"github.com/Suvariii/masisie/internal/domain"
	"github.com/Suvariii/masisie/internal/metrics"
	"github.com/Suvariii/masisie/internal/swarm"
)

// --- Command types ---

type engineCmd interface{ engineCmd() }

type cmdApply struct {
	envelope *swarm.Node
	replyCh  chan []domain.Event
}

func (cmdApply) engineCmd() {}

type cmdSnapshot struct {
	replyCh chan []domain.MatchSummary
}

func (cmdSnapshot) engineCmd() {}

type cmdMatchCount struct {
	replyCh chan int
}

func (cmdMatchCount) engineCmd() {}

type cmdStop struct{}

func (cmdStop) engineCmd() {}

// --- Engine ---

// Engine owns all match state. A single goroutine consumes commands, so every
// Apply is atomic from an observer's standpoint and snapshot reads can never
// see a match mid-mutation. There is no mutex because there is no concurrent
// mutation - the design assumes one active ingest stream.
type Engine struct {
	cmdCh         chan engineCmd
	clock         clockwork.Clock
	matches       map[string]*domain.Match
	order         []string
	basketballIDs map[string]struct{}
	snapshotLimit int
	done          chan struct{}
}

// New constructs and starts an engine. basketballIDs lists the sport taxonomy
// ids mapped to Basketball; every other id maps to Soccer. snapshotLimit caps
// how many matches a snapshot carries.
func New(clock clockwork.Clock, basketballIDs []string, snapshotLimit int) *Engine {
	ids := make(map[string]struct{}, len(basketballIDs))
	for _, id := range basketballIDs {
		ids[id] = struct{}{}
	}
	e := &Engine{
		cmdCh:         make(chan engineCmd, 64),
		clock:         clock,
		matches:       make(map[string]*domain.Match),
		basketballIDs: ids,
		snapshotLimit: snapshotLimit,
		done:          make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *Engine) run() {
	defer close(e.done)
	for cmd := range e.cmdCh {
		switch c := cmd.(type) {
		case cmdApply:
			c.replyCh <- e.handleApply(c.envelope)
		case cmdSnapshot:
			c.replyCh <- e.handleSnapshot()
		case cmdMatchCount:
			c.replyCh <- len(e.matches)
		case cmdStop:
			return
		}
	}
}

// Apply runs one telemetry envelope through the collect/normalize/derive
// pipeline and returns the events it produced. An envelope without a data
// object is a no-op.
func (e *Engine) Apply(envelope *swarm.Node) []domain.Event {
	replyCh := make(chan []domain.Event, 1)
	e.cmdCh <- cmdApply{envelope: envelope, replyCh: replyCh}
	return <-replyCh
}

// Snapshot returns up to snapshotLimit match summaries, most recently
// updated first.
func (e *Engine) Snapshot() []domain.MatchSummary {
	replyCh := make(chan []domain.MatchSummary, 1)
	e.cmdCh <- cmdSnapshot{replyCh: replyCh}
	return <-replyCh
}

// MatchCount returns the number of tracked matches.
func (e *Engine) MatchCount() int {
	replyCh := make(chan int, 1)
	e.cmdCh <- cmdMatchCount{replyCh: replyCh}
	return <-replyCh
}

// Stop shuts the engine goroutine down. Pending commands are dropped.
func (e *Engine) Stop() {
	e.cmdCh <- cmdStop{}
	<-e.done
}

// --- Handlers (engine goroutine only) ---

// upsert returns the match for gid, creating it on first sighting. Repeated
// calls with the same id always return the same record.
func (e *Engine) upsert(gid string, now int64) *domain.Match {
	if m, ok := e.matches[gid]; ok {
		return m
	}
	m := domain.NewMatch(gid, now)
	e.matches[gid] = m
	e.order = append(e.order, gid)
	return m
}

func (e *Engine) sportFor(sportID string) domain.Sport {
	if _, ok := e.basketballIDs[sportID]; ok {
		return domain.SportBasketball
	}
	return domain.SportSoccer
}

func (e *Engine) handleApply(envelope *swarm.Node) []domain.Event {
	data := envelope.Field("data")
	if !data.IsObject() {
		return nil
	}

	collected := swarm.Collect(data)
	ts := e.clock.Now().UnixMilli()

	var events []domain.Event
	for _, g := range collected.Games() {
		m := e.upsert(g.GameID, ts)
		m.LastUpdateMS = ts
		m.Sport = e.sportFor(g.SportID)

		u := swarm.Normalize(g.Raw)
		e.applyFields(m, u)

		if len(u.Counters) > 0 {
			derived := deriveEvents(m, u.Counters, ts)
			for _, ev := range derived {
				metrics.EventsEmitted.WithLabelValues(ev.Type).Inc()
			}
			events = append(events, derived...)
			for _, c := range u.Counters {
				m.Counters[c.Name] = c.Totals
			}
		}
	}

	metrics.MatchesTracked.Set(float64(len(e.matches)))
	return events
}

// applyFields folds a normalized update into the match. Fields are sticky:
// an update that lacks a field leaves the prior value in place. Score is the
// exception - it is replaced wholesale whenever one is detected.
func (e *Engine) applyFields(m *domain.Match, u swarm.Update) {
	if u.Team1 != "" {
		m.Team1 = u.Team1
	}
	if u.Team2 != "" {
		m.Team2 = u.Team2
	}
	if u.Tournament != "" {
		m.Tournament = u.Tournament
	}
	if u.Minute != "" {
		m.CurrentTime = u.Minute
	}
	if u.Score != nil {
		m.Score1, m.Score2 = u.Score.S1, u.Score.S2
	}
}

func (e *Engine) handleSnapshot() []domain.MatchSummary {
	ordered := make([]*domain.Match, 0, len(e.matches))
	for _, gid := range e.order {
		ordered = append(ordered, e.matches[gid])
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].LastUpdateMS > ordered[j].LastUpdateMS
	})

	limit := e.snapshotLimit
	if limit <= 0 || limit > len(ordered) {
		limit = len(ordered)
	}
	res := make([]domain.MatchSummary, 0, limit)
	for _, m := range ordered[:limit] {
		res = append(res, m.Summary())
	}
	return res
}
