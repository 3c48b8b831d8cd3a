package dfg

// Builder assembles a Graph one node and one edge at a time. Like
// fabric.Builder, its methods take and return a Builder value. The returned
// copy is shallow: it shares the node slice with the receiver, so changes to
// already-added nodes (MarkCritical, AddEdge, SetPredicate) are visible
// through both values.
type Builder struct {
	nodes []Node
	edges []Edge
}

// NewBuilder returns an empty Builder.
func NewBuilder() Builder {
	return Builder{}
}

// AddNode appends a node to the graph under construction and returns its
// assigned NodeID together with the updated Builder.
func (b Builder) AddNode(name string, tag Tag, execLatency int, pipelinable bool) (Builder, NodeID) {
	id := NodeID(len(b.nodes))
	b.nodes = append(b.nodes, Node{
		ID:            id,
		Name:          name,
		Tag:           tag,
		ExecLatency:   execLatency,
		IsPipelinable: pipelinable,
	})
	return b, id
}

// MarkCritical flags a node as critical. The scheduler treats an edge
// between two critical nodes of the same recurrence cycle as a back-edge
// during successor stitching.
func (b Builder) MarkCritical(id NodeID) Builder {
	b.nodes[id].IsCritical = true
	return b
}

// AddEdge records a dependency u -> v. Back-edges (loop-closing edges) must
// be marked explicitly; the builder does not infer them from structure
// because program order, not graph shape, decides which edge is the
// back-edge in a DFG with multiple paths between two nodes.
func (b Builder) AddEdge(u, v NodeID, backEdge bool) Builder {
	b.edges = append(b.edges, Edge{From: u, To: v, BackEdge: backEdge})
	if u != v {
		b.nodes[u].Succs = append(b.nodes[u].Succs, v)
		b.nodes[v].Preds = append(b.nodes[v].Preds, u)
	}
	return b
}

// SetPredicate records that predicater predicates predicatee. This
// attribute is consumed only by the external config/JSON emitter, never by
// placement or routing.
func (b Builder) SetPredicate(predicater, predicatee NodeID) Builder {
	b.nodes[predicater].IsPredicater = true
	b.nodes[predicater].Predicatees = append(b.nodes[predicater].Predicatees, predicatee)
	b.nodes[predicatee].IsPredicatee = true
	return b
}

// Build finalizes the graph, computing its recurrence cycles from the
// back-edges added via AddEdge. Each back-edge yields exactly one cycle: the
// shortest forward path that it closes (other simple cycles through the same
// back-edge are not reported). Cycle membership is then stamped back onto
// each node's CycleIDs.
func (b Builder) Build() *Graph {
	g := &Graph{nodes: append([]Node(nil), b.nodes...)}

	adj := make([][]NodeID, len(g.nodes))
	for _, e := range b.edges {
		adj[e.From] = append(adj[e.From], e.To)
	}

	backEdgeTargets := map[NodeID]bool{}
	for _, e := range b.edges {
		if e.BackEdge {
			backEdgeTargets[e.To] = true
		}
	}

	g.cycles = findCyclesThroughBackEdges(b.edges, adj)

	for ci, cyc := range g.cycles {
		for _, n := range cyc {
			g.nodes[n].CycleIDs = append(g.nodes[n].CycleIDs, ci)
		}
	}

	return g
}

// findCyclesThroughBackEdges walks, for every back-edge (u, v), the simple
// path from v back to u following forward edges (a DFG back-edge always
// closes a loop onto an ancestor reachable via forward edges in program
// order), and reports that path plus the closing edge as one recurrence
// cycle.
func findCyclesThroughBackEdges(edges []Edge, adj [][]NodeID) [][]NodeID {
	var cycles [][]NodeID
	for _, e := range edges {
		if !e.BackEdge {
			continue
		}
		path := shortestPath(adj, e.To, e.From)
		if path == nil {
			// Degenerate input: the marked back-edge doesn't close a
			// reachable loop. Treat it as a self/2-node cycle of the
			// edge's own endpoints so §3's invariants still see it.
			cycles = append(cycles, []NodeID{e.To, e.From})
			continue
		}
		cycles = append(cycles, path)
	}
	return cycles
}

// shortestPath returns the node sequence from src to dst following forward
// edges, via plain BFS, or nil if dst is unreachable from src.
func shortestPath(adj [][]NodeID, src, dst NodeID) []NodeID {
	prev := make(map[NodeID]NodeID)
	visited := map[NodeID]bool{src: true}
	queue := []NodeID{src}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == dst {
			var path []NodeID
			for n := dst; ; {
				path = append([]NodeID{n}, path...)
				if n == src {
					break
				}
				n = prev[n]
			}
			return path
		}
		for _, next := range adj[cur] {
			if !visited[next] {
				visited[next] = true
				prev[next] = cur
				queue = append(queue, next)
			}
		}
	}
	return nil
}
