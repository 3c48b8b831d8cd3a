// Package scheduler commits DFG nodes onto the fabric: it owns the mapping
// state (spec §3 "Mapping state") and implements the commit/rollback
// algorithm of spec §4.5.
package scheduler

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/sarchlab/zeomap/dfg"
	"github.com/sarchlab/zeomap/fabric"
	"github.com/sarchlab/zeomap/router"
)

// ErrBackEdgeTimingViolation is returned when a recurrence cycle's
// accumulated modulo-II delta would exceed II (invariant I6).
var ErrBackEdgeTimingViolation = errors.New("scheduler: recurrence cycle exceeds II")

// ErrZeroDurationBackEdge is returned when committing a back-edge would
// require a zero-cycle hold, which would silently halve the effective II.
var ErrZeroDurationBackEdge = errors.New("scheduler: back-edge commit has zero duration")

// Session owns the mutable mapping state for one II attempt: which tile
// each DFG node landed on and at which cycle. A Session is always built
// fresh by New, mirroring the fabric's arena-per-attempt reset — there is
// no incremental rollback path, only "construct a new Session and replay".
type Session struct {
	Fabric        *fabric.Fabric
	Graph         *dfg.Graph
	II            int
	StaticElastic bool
	Logger        *slog.Logger

	placement  map[dfg.NodeID]fabric.TileID
	startCycle map[dfg.NodeID]int
}

// New constructs a Session for a freshly constructed MRRG (the caller must
// have already called fabric.ConstructMRRG(ii)).
func New(f *fabric.Fabric, g *dfg.Graph, ii int, staticElastic bool, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		Fabric:        f,
		Graph:         g,
		II:            ii,
		StaticElastic: staticElastic,
		Logger:        logger,
		placement:     make(map[dfg.NodeID]fabric.TileID),
		startCycle:    make(map[dfg.NodeID]int),
	}
}

// TileOf implements cost.PlacementView.
func (s *Session) TileOf(id dfg.NodeID) (fabric.TileID, bool) {
	t, ok := s.placement[id]
	return t, ok
}

// CycleOf returns the committed start cycle of a placed node.
func (s *Session) CycleOf(id dfg.NodeID) (int, bool) {
	c, ok := s.startCycle[id]
	return c, ok
}

// Placement returns the full placement map (node -> tile).
func (s *Session) Placement() map[dfg.NodeID]fabric.TileID {
	return s.placement
}

// StartCycles returns the full start-cycle map (node -> cycle).
func (s *Session) StartCycles() map[dfg.NodeID]int {
	return s.startCycle
}

// Schedule commits node v onto tile via the already-routed path from its
// chosen producer, per spec §4.5. On any stitching failure, the caller is
// expected to discard the whole Session (arena-per-attempt) rather than
// try to undo this call.
func (s *Session) Schedule(v dfg.Node, tile *fabric.Tile, path router.Path) error {
	arrival := path.Arrival()

	s.placement[v.ID] = tile.ID
	s.startCycle[v.ID] = arrival
	tile.SetDFGNode(v, arrival, s.II, s.StaticElastic)

	primary := primaryProducer(v, path, s)
	if primary >= 0 {
		if err := s.commitPath(primary, path, arrival); err != nil {
			return err
		}
	}

	for _, p := range v.Preds {
		if p == primary {
			continue
		}
		if _, ok := s.placement[p]; !ok {
			continue
		}
		if err := s.tryToRoute(p, v.ID, arrival, false); err != nil {
			return fmt.Errorf("predecessor stitching %d->%d: %w", p, v.ID, err)
		}
	}

	for _, succ := range v.Succs {
		if _, ok := s.placement[succ]; !ok {
			continue
		}
		sCycle := s.startCycle[succ]
		sNode := s.Graph.Get(succ)
		backedge := s.Graph.ShareSameCycle(v.ID, succ) && v.IsCritical && sNode.IsCritical
		if err := s.tryToRoute(v.ID, succ, sCycle, backedge); err != nil {
			return fmt.Errorf("successor stitching %d->%d: %w", v.ID, succ, err)
		}
	}

	return nil
}

// primaryProducer identifies which predecessor's path was just committed,
// so predecessor stitching (step 3 of §4.5) skips re-routing that exact
// edge.
func primaryProducer(v dfg.Node, path router.Path, s *Session) dfg.NodeID {
	if len(path) == 0 {
		return -1
	}
	for _, p := range v.Preds {
		if t, ok := s.placement[p]; ok && t == path[0].Tile {
			return p
		}
	}
	return -1
}

// commitPath walks path from source to sink, occupying the link (or
// allocating a register, for a length-1 path) for each hop, per spec
// §4.5 step 2.
func (s *Session) commitPath(producer dfg.NodeID, path router.Path, consumerStart int) error {
	if len(path) == 1 {
		return s.commitSameTileHold(producer, path[0].Tile, path[0].Cycle, consumerStart)
	}

	for i := 0; i < len(path)-1; i++ {
		from, to := path[i], path[i+1]
		link, ok := s.Fabric.GetLink(from.Tile, to.Tile)
		if !ok {
			return fmt.Errorf("scheduler: no link %d->%d on committed path", from.Tile, to.Tile)
		}

		last := i == len(path)-2
		destCycle := to.Cycle
		if last {
			destCycle = consumerStart
		}

		bypass := !last && from.Cycle+1 == to.Cycle
		var duration int
		if bypass {
			duration = 1
		} else {
			duration = mod(destCycle-from.Cycle, s.II)
			if duration == 0 {
				duration = s.II
			}
		}

		link.Occupy(producer, from.Cycle, duration, s.II, bypass, i == 0, s.StaticElastic)
	}
	return nil
}

func (s *Session) commitSameTileHold(producer dfg.NodeID, tileID fabric.TileID, arrival, consumerStart int) error {
	duration := mod(s.II+mod(consumerStart-arrival, s.II), s.II)
	if duration == 0 {
		return nil
	}
	tile := s.Fabric.Tile(tileID)
	if _, ok := tile.AllocateReg(int(producer), arrival, duration, s.II); !ok {
		s.Logger.Warn("register allocation exhausted, proceeding without a reservation",
			"tile", tileID, "producer", producer)
	}
	return nil
}

func mod(a, n int) int {
	if n == 0 {
		return 0
	}
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

// tryToRoute routes one additional edge between two already-placed nodes
// (spec §4.5 steps 3-4 / §4.6 "tryToRoute"): it prechecks the recurrence
// bound (I6) before spending a Dijkstra search, and for back-edges refuses
// a zero-duration commit (§4.6).
func (s *Session) tryToRoute(u, v dfg.NodeID, targetCycle int, backedge bool) error {
	if s.recurrenceOverbooked(u, v) {
		return ErrBackEdgeTimingViolation
	}

	uNode, vNode := s.Graph.Get(u), s.Graph.Get(v)
	uTile := s.placement[u]
	vTile := s.placement[v]

	path, err := router.Route(s.Fabric, s.II, router.Request{
		Producer:          uNode,
		ProducerTile:      uTile,
		ProducerDoneCycle: s.startCycle[u] + uNode.ExecLatency - 1,
		Consumer:          vNode,
		ConsumerTile:      vTile,
		TargetCycle:       targetCycle,
	})
	if err != nil {
		return err
	}

	if backedge {
		last := len(path) - 1
		duration := mod(targetCycle-path[last].Cycle, s.II)
		if len(path) == 1 {
			duration = mod(s.II+mod(targetCycle-path[0].Cycle, s.II), s.II)
		}
		if duration == 0 {
			return ErrZeroDurationBackEdge
		}
	}

	return s.commitPath(u, path, targetCycle)
}

// recurrenceOverbooked sums, over every recurrence cycle containing both u
// and v, the modulo-II deltas of its already-placed consecutive edges and
// reports whether the running total already exceeds II (invariant I6),
// without waiting for the full cycle to be placed.
func (s *Session) recurrenceOverbooked(u, v dfg.NodeID) bool {
	if !s.Graph.ShareSameCycle(u, v) {
		return false
	}

	for _, cyc := range s.Graph.CycleLists() {
		if !containsBoth(cyc, u, v) {
			continue
		}
		total := 0
		for i := range cyc {
			a := cyc[i]
			b := cyc[(i+1)%len(cyc)]
			ca, okA := s.startCycle[a]
			cb, okB := s.startCycle[b]
			if !okA || !okB {
				continue
			}
			total += mod(cb-ca, s.II)
		}
		if total > s.II {
			return true
		}
	}
	return false
}

func containsBoth(cyc []dfg.NodeID, u, v dfg.NodeID) bool {
	hasU, hasV := false, false
	for _, n := range cyc {
		if n == u {
			hasU = true
		}
		if n == v {
			hasV = true
		}
	}
	return hasU && hasV
}
