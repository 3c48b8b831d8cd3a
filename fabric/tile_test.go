package fabric_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/zeomap/dfg"
	"github.com/sarchlab/zeomap/fabric"
)

var _ = Describe("Tile", func() {
	Describe("CanOccupy", func() {
		It("rejects a second single-cycle node in the same modulo-II slot", func() {
			f := fabric.NewBuilder().WithSize(1, 1).Build()
			f.ConstructMRRG(3)
			t := f.TileAt(0, 0)

			a := dfg.Node{ID: 0, Tag: dfg.Add, ExecLatency: 1}
			t.SetDFGNode(a, 0, 3, false)

			b := dfg.Node{ID: 1, Tag: dfg.Add, ExecLatency: 1}
			Expect(t.CanOccupy(b, 0, 3)).To(BeFalse())
			Expect(t.CanOccupy(b, 1, 3)).To(BeTrue())
		})

		It("lets two pipelinable multi-cycle ops of the same tag overlap their drain stages", func() {
			f := fabric.NewBuilder().WithSize(1, 1).Build()
			f.ConstructMRRG(3)
			t := f.TileAt(0, 0)

			mul1 := dfg.Node{ID: 0, Tag: dfg.Mul, ExecLatency: 2, IsPipelinable: true}
			t.SetDFGNode(mul1, 0, 3, false)

			mul2 := dfg.Node{ID: 1, Tag: dfg.Mul, ExecLatency: 2, IsPipelinable: true}
			Expect(t.CanOccupy(mul2, 1, 3)).To(BeTrue())
		})

		It("rejects a non-pipelinable multi-cycle op from overlapping an in-flight pipeline stage", func() {
			f := fabric.NewBuilder().WithSize(1, 1).Build()
			f.ConstructMRRG(3)
			t := f.TileAt(0, 0)

			mul1 := dfg.Node{ID: 0, Tag: dfg.Mul, ExecLatency: 2, IsPipelinable: true}
			t.SetDFGNode(mul1, 0, 3, false)

			mul2 := dfg.Node{ID: 1, Tag: dfg.Mul, ExecLatency: 2, IsPipelinable: false}
			Expect(t.CanOccupy(mul2, 1, 3)).To(BeFalse())
		})

		It("refuses a new node once ctrl-mem capacity is exhausted", func() {
			f := fabric.NewBuilder().WithSize(1, 1).WithCtrlMemSize(1).Build()
			f.ConstructMRRG(4)
			t := f.TileAt(0, 0)

			a := dfg.Node{ID: 0, Tag: dfg.Add, ExecLatency: 1}
			t.SetDFGNode(a, 0, 4, false)

			b := dfg.Node{ID: 1, Tag: dfg.Add, ExecLatency: 1}
			Expect(t.CanOccupy(b, 2, 4)).To(BeFalse())

			// The already-resident node may still re-occupy a later slot.
			Expect(t.CanOccupy(a, 2, 4)).To(BeTrue())
		})
	})

	Describe("AllocateReg", func() {
		It("returns ok=false once every register is reserved across a cycle's modulo window", func() {
			f := fabric.NewBuilder().WithSize(1, 1).WithRegisterCount(1).Build()
			f.ConstructMRRG(2)
			t := f.TileAt(0, 0)

			_, ok := t.AllocateReg(0, 0, 1, 2)
			Expect(ok).To(BeTrue())

			_, ok = t.AllocateReg(1, 0, 1, 2)
			Expect(ok).To(BeFalse())
		})
	})
})

var _ = Describe("Link", func() {
	It("allows the same producer to reoccupy a link it already holds", func() {
		f := fabric.NewBuilder().WithSize(2, 1).Build()
		f.ConstructMRRG(2)
		link, ok := f.GetLink(f.TileAt(0, 0).ID, f.TileAt(1, 0).ID)
		Expect(ok).To(BeTrue())

		link.Occupy(5, 0, 1, 2, false, true, false)
		Expect(link.CanOccupy(5, 0, 2)).To(BeTrue())
		Expect(link.CanOccupy(7, 0, 2)).To(BeFalse())
	})
})
