package iidriver_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/zeomap/dfg"
	"github.com/sarchlab/zeomap/fabric"
	"github.com/sarchlab/zeomap/iidriver"
)

func chainGraph() *dfg.Graph {
	b := dfg.NewBuilder()
	b, u := b.AddNode("u", dfg.Add, 1, false)
	b, v := b.AddNode("v", dfg.Add, 1, false)
	b = b.AddEdge(u, v, false)
	return b.Build()
}

var _ = Describe("ResMII/RecMII", func() {
	It("computes the resource bound from node count over usable tiles", func() {
		f := fabric.NewBuilder().WithSize(2, 2).Build()
		g := chainGraph()
		Expect(iidriver.ResMII(g, f)).To(Equal(1))
	})

	It("disabling half a small mesh doubles the resource bound", func() {
		f := fabric.NewBuilder().WithSize(2, 1).DisableTile(1, 0).Build()
		g := chainGraph()
		Expect(iidriver.ResMII(g, f)).To(Equal(2))
	})

	It("defaults to 1 when the DFG has no recurrence cycles", func() {
		g := chainGraph()
		Expect(iidriver.RecMII(g)).To(Equal(1))
	})

	It("returns the longest recurrence cycle's length", func() {
		b := dfg.NewBuilder()
		b, n0 := b.AddNode("n0", dfg.Add, 1, false)
		b, n1 := b.AddNode("n1", dfg.Add, 1, false)
		b, n2 := b.AddNode("n2", dfg.Mac, 1, false)
		b = b.AddEdge(n0, n1, false)
		b = b.AddEdge(n1, n2, false)
		b = b.AddEdge(n2, n0, true)
		g := b.Build()

		Expect(iidriver.RecMII(g)).To(Equal(3))
	})
})

var _ = Describe("Map", func() {
	It("heuristically places a two-node chain on a 2x2 mesh at II=1", func() {
		f := fabric.NewBuilder().WithSize(2, 2).Build()
		g := chainGraph()

		ii, session, err := iidriver.Map(f, g, iidriver.Options{Mode: iidriver.Heuristic})
		Expect(err).NotTo(HaveOccurred())
		Expect(ii).To(Equal(1))
		Expect(session.Placement()).To(HaveLen(2))
	})

	It("exhaustively places a two-node chain on a minimal vertical mesh", func() {
		f := fabric.NewBuilder().WithSize(1, 2).Build()
		g := chainGraph()

		ii, session, err := iidriver.Map(f, g, iidriver.Options{Mode: iidriver.Exhaustive})
		Expect(err).NotTo(HaveOccurred())
		Expect(ii).To(BeNumerically(">=", 1))
		Expect(session.Placement()).To(HaveLen(2))
	})

	It("fails with ErrIICapExceeded when no tile can ever host the DFG's op", func() {
		f := fabric.NewBuilder().WithSize(1, 1).
			WithDefaultCapability(fabric.CapabilityFor(dfg.Load)).
			Build()
		g := chainGraph()

		_, _, err := iidriver.Map(f, g, iidriver.Options{Mode: iidriver.Heuristic, MaxII: 2})
		Expect(err).To(HaveOccurred())
	})

	It("maps a 3-node critical back-edge recurrence end-to-end", func() {
		f := fabric.NewBuilder().WithSize(3, 1).Build()

		b := dfg.NewBuilder()
		b, n0 := b.AddNode("n0", dfg.Add, 1, false)
		b, n1 := b.AddNode("n1", dfg.Add, 1, false)
		b, n2 := b.AddNode("n2", dfg.Mac, 1, false)
		b = b.AddEdge(n0, n1, false)
		b = b.AddEdge(n1, n2, false)
		b = b.AddEdge(n2, n0, true)
		b = b.MarkCritical(n0)
		b = b.MarkCritical(n2)
		g := b.Build()

		// n2 is placed last (presentation order) and stitches its back-edge
		// onto n0, which was already committed at an earlier startCycle.
		// The Dijkstra arrival for that edge is necessarily later than n0's
		// startCycle — that's wraparound, not an infeasible route — so this
		// must succeed rather than reject every II up to the cap.
		ii, session, err := iidriver.Map(f, g, iidriver.Options{Mode: iidriver.Heuristic, MaxII: 6})
		Expect(err).NotTo(HaveOccurred())
		Expect(ii).To(Equal(3))
		Expect(session.Placement()).To(HaveLen(3))
	})
})
