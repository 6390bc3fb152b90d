package board

import "github.com/ldevreaux/gambit/model"

// Topology is an undirected graph over cell indices, rebuilt every turn.
// Edges come from observed legal move destinations, play-card destinations
// and move-then-attack preview rows — the client never sends an explicit
// adjacency list, so reachability is learned from what it permits.
type Topology struct {
	adj       map[int][]int
	selfDist  map[int]int
	enemyDist map[int]int
	approx    map[int]int // client-supplied fallback distances
}

func buildTopology(snap *model.Snapshot) *Topology {
	t := &Topology{
		adj:       make(map[int][]int),
		selfDist:  make(map[int]int),
		enemyDist: make(map[int]int),
		approx:    snap.ApproxDistances,
	}

	unitCell := make(map[int]int, len(snap.SelfUnits)+len(snap.EnemyUnits))
	for _, u := range snap.SelfUnits {
		unitCell[u.UnitID] = u.Cell
	}
	for _, u := range snap.EnemyUnits {
		unitCell[u.UnitID] = u.Cell
	}

	for _, act := range snap.LegalActions {
		switch {
		case act.MoveUnit != nil:
			if from, ok := unitCell[act.MoveUnit.UnitID]; ok {
				t.addEdge(from, act.MoveUnit.ToCell)
			}
		case act.PlayCard != nil:
			// Cards deploy from the hero's position.
			t.addEdge(snap.Self.HeroCell, act.PlayCard.Cell)
		}
	}
	for _, row := range snap.TacticalPreview {
		if from, ok := unitCell[row.UnitID]; ok {
			t.addEdge(from, row.ToCell)
		}
	}

	t.selfDist = t.bfs(snap.Self.HeroCell)
	t.enemyDist = t.bfs(snap.Enemy.HeroCell)
	return t
}

func (t *Topology) addEdge(a, b int) {
	if a == b || a < 0 || b < 0 {
		return
	}
	if !contains(t.adj[a], b) {
		t.adj[a] = append(t.adj[a], b)
	}
	if !contains(t.adj[b], a) {
		t.adj[b] = append(t.adj[b], a)
	}
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// bfs computes hop distances from the given cell over the learned graph.
func (t *Topology) bfs(from int) map[int]int {
	dist := map[int]int{from: 0}
	queue := []int{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range t.adj[cur] {
			if _, seen := dist[next]; seen {
				continue
			}
			dist[next] = dist[cur] + 1
			queue = append(queue, next)
		}
	}
	return dist
}

// DistanceFromSelf returns the hop distance from our hero to the cell,
// falling back to any client-supplied approximate distance for cells the
// graph hasn't reached. The bool reports whether any distance is known.
func (t *Topology) DistanceFromSelf(cell int) (int, bool) {
	if d, ok := t.selfDist[cell]; ok {
		return d, true
	}
	if d, ok := t.approx[cell]; ok {
		return d, true
	}
	return 0, false
}

// DistanceFromEnemy is DistanceFromSelf measured from the enemy hero.
func (t *Topology) DistanceFromEnemy(cell int) (int, bool) {
	if d, ok := t.enemyDist[cell]; ok {
		return d, true
	}
	if d, ok := t.approx[cell]; ok {
		return d, true
	}
	return 0, false
}

// Neighbors returns the known adjacent cells (copy not taken; callers must
// not mutate).
func (t *Topology) Neighbors(cell int) []int { return t.adj[cell] }
