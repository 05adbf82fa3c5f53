package swarm

import "strings"

// defaultSportID is assumed until a sport branch puts a taxonomy id in scope.
const defaultSportID = "1"

// Captured is one match record pulled out of the tree, tagged with the
// taxonomy id of the sport branch it was found under.
type Captured struct {
	GameID  string
	SportID string
	Raw     *Node
}

// Collection accumulates captured games. A game id seen again later in the
// traversal overwrites the earlier capture in place, so the last-visited
// occurrence wins while first-seen order is preserved.
type Collection struct {
	order []string
	byID  map[string]int
	games []Captured
}

func newCollection() *Collection {
	return &Collection{byID: make(map[string]int)}
}

func (c *Collection) put(g Captured) {
	if i, ok := c.byID[g.GameID]; ok {
		c.games[i] = g
		return
	}
	c.byID[g.GameID] = len(c.games)
	c.order = append(c.order, g.GameID)
	c.games = append(c.games, g)
}

// Games returns the captured records in traversal order.
func (c *Collection) Games() []Captured { return c.games }

// Len returns the number of distinct game ids captured.
func (c *Collection) Len() int { return len(c.games) }

// Collect walks a swarm tree and extracts every match record.
//
// Two keys get special handling: a "sport" object fans out into per-taxonomy-id
// subtrees with the id propagated downward, and a "game" object is a flat
// id -> record mapping. Everything else is walked through untouched, so the
// collector does not care how deep the feed nests tournaments and regions.
func Collect(root *Node) *Collection {
	out := newCollection()
	collectInto(root, out, defaultSportID)
	return out
}

func collectInto(n *Node, out *Collection, sportID string) {
	switch n.Kind() {
	case KindObject:
		for _, f := range n.Fields() {
			switch {
			case f.Key == "sport" && f.Value.IsObject():
				for _, sportField := range f.Value.Fields() {
					collectInto(sportField.Value, out, sportField.Key)
				}
			case f.Key == "game" && f.Value.IsObject():
				for _, gameField := range f.Value.Fields() {
					gid := strings.TrimSpace(gameField.Key)
					if gid == "" || !gameField.Value.IsObject() {
						continue
					}
					out.put(Captured{GameID: gid, SportID: sportID, Raw: gameField.Value})
				}
			default:
				collectInto(f.Value, out, sportID)
			}
		}
	case KindArray:
		for _, el := range n.Elems() {
			collectInto(el, out, sportID)
		}
	}
}
