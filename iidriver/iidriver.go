// Package iidriver runs the outer Initiation-Interval sweep of spec §4.6:
// it computes the resource- and recurrence-bound starting II, then retries
// mapping at increasing II until either a heuristic or an exhaustive DFS
// search places every DFG node.
package iidriver

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"

	"github.com/sarchlab/zeomap/cost"
	"github.com/sarchlab/zeomap/dfg"
	"github.com/sarchlab/zeomap/fabric"
	"github.com/sarchlab/zeomap/router"
	"github.com/sarchlab/zeomap/scheduler"
)

// Mode selects the outer search strategy.
type Mode int

const (
	Heuristic Mode = iota
	Exhaustive
)

// ErrIICapExceeded is returned when the sweep reaches a caller-supplied
// hard cap on II without finding a successful mapping.
var ErrIICapExceeded = errors.New("iidriver: II cap exceeded without a successful mapping")

// Options configures one mapping run.
type Options struct {
	Mode          Mode
	StaticElastic bool
	// MaxII caps the sweep; 0 means unbounded.
	MaxII int
	// SeedII, if > 0, overrides the computed II0 as the sweep's starting
	// point (never lower than max(resMII, recMII)).
	SeedII int
	Logger *slog.Logger
}

// ResMII returns the resource-bound initiation interval: the DFG's node
// count divided by the fabric's usable tile count, rounded up.
func ResMII(g *dfg.Graph, f *fabric.Fabric) int {
	usable := f.FUCount()
	if usable == 0 {
		return math.MaxInt32
	}
	return ceilDiv(g.NodeCount(), usable)
}

// RecMII returns the recurrence-bound initiation interval: the length of
// the DFG's longest recurrence cycle (the distance-1 approximation of
// spec §4.6).
func RecMII(g *dfg.Graph) int {
	rec := 0
	for _, cyc := range g.CycleLists() {
		if len(cyc) > rec {
			rec = len(cyc)
		}
	}
	if rec == 0 {
		return 1
	}
	return rec
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return math.MaxInt32
	}
	return (a + b - 1) / b
}

// Map runs the II sweep and returns the II at which mapping succeeded
// together with the session holding the final placement, or -1 on failure.
func Map(f *fabric.Fabric, g *dfg.Graph, opts Options) (int, *scheduler.Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ii0 := maxInt(ResMII(g, f), RecMII(g))
	if opts.SeedII > ii0 {
		ii0 = opts.SeedII
	}

	if opts.StaticElastic {
		f.ConstructMRRG(ii0)
		session := scheduler.New(f, g, ii0, true, logger)
		if placeHeuristic(f, g, session, ii0) {
			return ii0, session, nil
		}
		return -1, nil, errors.New("iidriver: static-elastic placement failed")
	}

	for ii := ii0; opts.MaxII == 0 || ii <= opts.MaxII; ii++ {
		logger.Log(context.Background(), levelMapTrace, "attempting II", "ii", ii)

		f.ConstructMRRG(ii)
		var session *scheduler.Session
		var ok bool

		switch opts.Mode {
		case Exhaustive:
			session, ok = exhaustiveMap(f, g, ii, logger)
		default:
			session = scheduler.New(f, g, ii, false, logger)
			ok = placeHeuristic(f, g, session, ii)
		}

		if ok {
			return ii, session, nil
		}
	}

	return -1, nil, ErrIICapExceeded
}

// levelMapTrace is a slog level below Debug, in the teacher's pattern of
// reserving a level for high-volume tracing that's opt-in via
// slog.HandlerOptions.Level. Map logs each II attempt at this level.
const levelMapTrace = slog.Level(-8)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

type candidate struct {
	tile *fabric.Tile
	path router.Path
	cost float64
}

// rankedCandidates enumerates, for node v, every capability-eligible tile's
// best routed path and returns them sorted by ascending cost. Ties keep
// the original row-major iteration order (sort.SliceStable), per spec §5.
func rankedCandidates(f *fabric.Fabric, g *dfg.Graph, session *scheduler.Session, v dfg.Node, ii int) []candidate {
	placedPreds := make([]dfg.NodeID, 0, len(v.Preds))
	for _, p := range v.Preds {
		if _, ok := session.TileOf(p); ok {
			placedPreds = append(placedPreds, p)
		}
	}

	var out []candidate
	for _, tile := range f.CapableTiles(v.Tag) {
		var path router.Path

		if len(placedPreds) > 0 {
			var best router.Path
			feasible := true
			for _, p := range placedPreds {
				pNode := g.Get(p)
				pTile, _ := session.TileOf(p)
				pCycle, _ := session.CycleOf(p)
				candPath, err := router.Route(f, ii, router.Request{
					Producer:          pNode,
					ProducerTile:      pTile,
					ProducerDoneCycle: pCycle + pNode.ExecLatency - 1,
					Consumer:          v,
					ConsumerTile:      tile.ID,
					TargetCycle:       -1,
				})
				if err != nil {
					feasible = false
					break
				}
				if best == nil || candPath.Arrival() > best.Arrival() {
					best = candPath
				}
			}
			if !feasible {
				continue
			}
			path = best
		} else {
			cycle := earliestFreeCycle(tile, v, ii)
			if cycle < 0 {
				continue
			}
			path = router.Path{{Tile: tile.ID, Cycle: cycle}}
		}

		c := cost.Compute(f, g, session, v, tile, path, ii)
		out = append(out, candidate{tile: tile, path: path, cost: c})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].cost < out[j].cost })
	return out
}

func earliestFreeCycle(tile *fabric.Tile, v dfg.Node, ii int) int {
	for c := 0; c < ii; c++ {
		if tile.CanOccupy(v, c, ii) {
			return c
		}
	}
	return -1
}

// placeHeuristic implements the heuristic search loop of spec §4.6: visit
// nodes in presentation order, rank candidates, commit the cheapest.
func placeHeuristic(f *fabric.Fabric, g *dfg.Graph, session *scheduler.Session, ii int) bool {
	for _, v := range g.Nodes() {
		candidates := rankedCandidates(f, g, session, v, ii)
		if len(candidates) == 0 {
			return false
		}
		best := candidates[0]
		if err := session.Schedule(v, best.tile, best.path); err != nil {
			return false
		}
	}
	return true
}

// exhaustiveMap implements the DFS-with-backtracking search of spec §4.6:
// on a schedule failure it doesn't patch state incrementally, it rebuilds
// the MRRG and replays the committed prefix, then tries the next-ranked
// candidate for the node being expanded.
func exhaustiveMap(f *fabric.Fabric, g *dfg.Graph, ii int, logger *slog.Logger) (*scheduler.Session, bool) {
	nodes := g.Nodes()
	chosen := make([]candidate, len(nodes))
	skip := make([]int, len(nodes))

	var session *scheduler.Session

	var attempt func(depth int) bool
	attempt = func(depth int) bool {
		if depth == len(nodes) {
			return true
		}

		v := nodes[depth]

		for {
			f.ConstructMRRG(ii)
			session = scheduler.New(f, g, ii, false, logger)
			if !replay(session, nodes[:depth], chosen[:depth]) {
				return false
			}

			candidates := rankedCandidates(f, g, session, v, ii)
			if skip[depth] >= len(candidates) {
				skip[depth] = 0
				return false
			}

			cand := candidates[skip[depth]]
			if err := session.Schedule(v, cand.tile, cand.path); err != nil {
				skip[depth]++
				continue
			}

			chosen[depth] = cand
			if attempt(depth + 1) {
				return true
			}
			skip[depth]++
		}
	}

	ok := attempt(0)
	return session, ok
}

func replay(session *scheduler.Session, nodes []dfg.Node, chosen []candidate) bool {
	for i, v := range nodes {
		if err := session.Schedule(v, chosen[i].tile, chosen[i].path); err != nil {
			return false
		}
	}
	return true
}
