package biostream

// Leaves returns the ids of nodes without outgoing edges, in node order.
func Leaves(nodes []Node, edges []Edge) []string {
	hasOut := make(map[string]bool, len(edges))
	for _, e := range edges {
		hasOut[e.Source] = true
	}
	var out []string
	for _, n := range nodes {
		if !hasOut[n.ID] {
			out = append(out, n.ID)
		}
	}
	return out
}

// Dangling returns the ids of edges whose source or target is missing from
// nodes.
func Dangling(nodes []Node, edges []Edge) []string {
	ids := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = true
	}
	var out []string
	for _, e := range edges {
		if !ids[e.Source] || !ids[e.Target] {
			out = append(out, e.ID)
		}
	}
	return out
}

// TopologicalOrder returns the node ids ordered so that every edge points
// forward. Ties keep node order. Returns ErrCycleDetected if the edges form
// a cycle.
func TopologicalOrder(nodes []Node, edges []Edge) ([]string, error) {
	adj := make(map[string][]string)
	for _, e := range edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)

	state := make(map[string]int, len(nodes))
	order := make([]string, 0, len(nodes))

	var dfs func(id string) bool
	dfs = func(id string) bool {
		state[id] = visiting
		for _, next := range adj[id] {
			switch state[next] {
			case visiting:
				return true
			case unvisited:
				if dfs(next) {
					return true
				}
			}
		}
		state[id] = visited
		order = append(order, id)
		return false
	}

	// Walk in reverse so the reversed post-order keeps node order for
	// independent nodes.
	for i := len(nodes) - 1; i >= 0; i-- {
		id := nodes[i].ID
		if state[id] == unvisited {
			if dfs(id) {
				return nil, ErrCycleDetected
			}
		}
	}

	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order, nil
}
