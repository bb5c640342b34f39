package tlm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/hetsim/sim"
)

var _ = Describe("Router", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *sim.SerialEngine
		router   *Router
		memory   *MockTarget
		device   *MockTarget
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = sim.NewSerialEngine()
		memory = NewMockTarget(mockCtrl)
		device = NewMockTarget(mockCtrl)

		router = NewRouter("Bus")
		router.Map(0x1000_0000, 0x1_0000, device)
		router.Map(0, 0x1_0000, memory)
	})

	AfterEach(func() {
		engine.Finished()
		mockCtrl.Finish()
	})

	call := func(txn *Transaction) {
		engine.Spawn("initiator", func(p *sim.Process) {
			router.Call(p, txn)
		})
		Expect(engine.Run()).To(Succeed())
	}

	It("should forward the local address to the owning target", func() {
		txn := NewRead(0x1000_0020, 8)

		device.EXPECT().
			Call(gomock.Any(), txn).
			Do(func(p *sim.Process, t *Transaction) {
				Expect(t.Address).To(Equal(uint64(0x20)))
				p.Wait(5 * sim.NS)
				t.Complete(Ok)
			})

		call(txn)

		Expect(txn.Status).To(Equal(Ok))
		Expect(txn.Address).To(Equal(uint64(0x1000_0020)))
		Expect(engine.CurrentTime()).To(Equal(5 * sim.NS))
	})

	It("should route to the lower window", func() {
		txn := NewWrite(0xfff8, make([]byte, 8))

		memory.EXPECT().
			Call(gomock.Any(), txn).
			Do(func(p *sim.Process, t *Transaction) {
				Expect(t.Address).To(Equal(uint64(0xfff8)))
				t.Complete(Ok)
			})

		call(txn)

		Expect(txn.Status).To(Equal(Ok))
	})

	It("should reject unmapped addresses", func() {
		txn := NewRead(0x2000_0000, 4)

		call(txn)

		Expect(txn.Status).To(Equal(AddressError))
	})

	It("should reject overlapping windows", func() {
		Expect(func() {
			router.Map(0x8000, 0x1_0000, memory)
		}).To(Panic())
	})

	It("should nest", func() {
		top := NewRouter("Top")
		top.Map(0x7000_0000, 0x1000_0000, router)

		txn := NewRead(0x7000_0000, 1)
		memory.EXPECT().
			Call(gomock.Any(), txn).
			Do(func(p *sim.Process, t *Transaction) {
				Expect(t.Address).To(Equal(uint64(0)))
				t.Complete(Ok)
			})

		engine.Spawn("initiator", func(p *sim.Process) {
			top.Call(p, txn)
		})
		Expect(engine.Run()).To(Succeed())

		Expect(txn.Address).To(Equal(uint64(0x7000_0000)))
	})
})
