package router_test

import (
	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/zeomap/dfg"
	"github.com/sarchlab/zeomap/fabric"
	"github.com/sarchlab/zeomap/router"
)

func newNode(id dfg.NodeID, tag dfg.Tag) dfg.Node {
	return dfg.Node{ID: id, Name: "n", Tag: tag, ExecLatency: 1}
}

var _ = Describe("Route", func() {
	var mockCtrl *gomock.Controller

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("returns ErrUnroutable when the producer tile has no outgoing links and isn't the consumer", func() {
		mockFabric := router.FabricView(NewMockFabricView(mockCtrl))
		f := mockFabric.(*MockFabricView)

		f.EXPECT().NumTiles().Return(2).AnyTimes()
		f.EXPECT().CycleBoundary().Return(8).AnyTimes()
		f.EXPECT().Tiles().Return([]*fabric.Tile{
			{ID: 0, X: 0, Y: 0},
			{ID: 1, X: 1, Y: 0},
		}).AnyTimes()
		f.EXPECT().OutLinks(fabric.TileID(0)).Return(nil).AnyTimes()

		producer := newNode(0, dfg.Add)
		consumer := newNode(1, dfg.Add)

		_, err := router.Route(mockFabric, 2, router.Request{
			Producer:          producer,
			ProducerTile:      0,
			ProducerDoneCycle: 0,
			Consumer:          consumer,
			ConsumerTile:      1,
			TargetCycle:       -1,
		})

		Expect(err).To(MatchError(router.ErrUnroutable))
	})

	It("routes within a real single-tile mesh without needing any hop", func() {
		f := fabric.NewBuilder().WithSize(1, 1).Build()
		f.ConstructMRRG(2)

		producer := newNode(0, dfg.Add)
		consumer := newNode(1, dfg.Add)

		path, err := router.Route(f, 2, router.Request{
			Producer:          producer,
			ProducerTile:      0,
			ProducerDoneCycle: 0,
			Consumer:          consumer,
			ConsumerTile:      0,
			TargetCycle:       -1,
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(HaveLen(1))
		Expect(path[0].Tile).To(Equal(fabric.TileID(0)))
	})
})
