package host

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hetsim/dma"
	"github.com/sarchlab/hetsim/mem/memctl"
	"github.com/sarchlab/hetsim/sim"
	"github.com/sarchlab/hetsim/tlm"
)

var _ = Describe("Host", func() {
	var (
		engine *sim.SerialEngine
		memCtl *memctl.Comp
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		memCtl = memctl.MakeBuilder().
			WithMemorySize(0x10000).
			Build("Mem")
	})

	AfterEach(func() {
		engine.Finished()
	})

	It("should write and read memory", func() {
		var got uint64

		h := MakeBuilder().
			WithEngine(engine).
			WithBus(memCtl).
			WithProgram(func(h *Host) error {
				if err := h.Write64(0x100, 0x1122334455667788); err != nil {
					return err
				}

				var err error
				got, err = h.Read64(0x100)

				return err
			}).
			Build("Host")

		Expect(engine.Run()).To(Succeed())
		Expect(got).To(Equal(uint64(0x1122334455667788)))
		Expect(h.Finished()).To(BeTrue())
		Expect(h.Err()).NotTo(HaveOccurred())
		Expect(h.FinishedAt()).To(Equal(h.Now()))
		Expect(h.Stats()).To(Equal(Stats{
			Reads:        1,
			Writes:       1,
			BytesRead:    8,
			BytesWritten: 8,
		}))
	})

	It("should turn a failed transaction into an error", func() {
		var readErr error

		MakeBuilder().
			WithEngine(engine).
			WithBus(memCtl).
			WithProgram(func(h *Host) error {
				_, readErr = h.Read(0x10000, 8)
				return nil
			}).
			Build("Host")

		Expect(engine.Run()).To(Succeed())

		var txnErr *TxnError
		Expect(errors.As(readErr, &txnErr)).To(BeTrue())
		Expect(txnErr.Status).To(Equal(tlm.AddressError))
		Expect(txnErr.Address).To(Equal(uint64(0x10000)))
		Expect(errors.Is(readErr, ErrTransaction)).To(BeTrue())
	})

	It("should abort the simulation when the program fails", func() {
		h := MakeBuilder().
			WithEngine(engine).
			WithBus(memCtl).
			WithProgram(func(h *Host) error {
				return h.Write(0xffff, []byte{1, 2})
			}).
			Build("Host")

		err := engine.Run()

		Expect(errors.Is(err, ErrTransaction)).To(BeTrue())
		Expect(h.Err()).To(MatchError(err))
		Expect(h.Stats().Failures).To(Equal(uint64(1)))
	})

	It("should poll until the word matches", func() {
		reads := 0
		counter := tlm.TargetFunc(func(_ *sim.Process, txn *tlm.Transaction) {
			reads++
			tlm.PutUint64LE(txn.Data, uint64(reads))
			txn.Complete(tlm.Ok)
		})

		h := MakeBuilder().
			WithEngine(engine).
			WithBus(counter).
			WithProgram(func(h *Host) error {
				return h.Poll64(0, 3, 10*sim.NS)
			}).
			Build("Host")

		Expect(engine.Run()).To(Succeed())
		Expect(reads).To(Equal(3))
		Expect(h.FinishedAt()).To(Equal(20 * sim.NS))
	})

	It("should program a DMA transfer", func() {
		router := tlm.NewRouter("Bus")
		d := dma.MakeBuilder().
			WithEngine(engine).
			WithBus(router).
			Build("DMA")
		router.Map(0, 0x10000, memCtl)
		router.Map(0x1000_0000, 0x1000, d)

		Expect(memCtl.Storage().Write(0x2000, []byte{9, 8, 7, 6, 5, 4, 3, 2})).
			To(Succeed())

		MakeBuilder().
			WithEngine(engine).
			WithBus(router).
			WithProgram(func(h *Host) error {
				return h.DMATransfer(0x1000_0000, 0x2000, 0x3000, 8)
			}).
			Build("Host")

		Expect(engine.Run()).To(Succeed())

		data, err := memCtl.Storage().Read(0x3000, 8)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal([]byte{9, 8, 7, 6, 5, 4, 3, 2}))
		Expect(d.Registers().Status).To(Equal(dma.StatusIdle))
	})
})

var _ = Describe("FIRProgram", func() {
	DescribeTable("refuses layouts it cannot stream",
		func(l FIRLayout) {
			engine := sim.NewSerialEngine()
			defer engine.Finished()

			bus := tlm.TargetFunc(func(_ *sim.Process, txn *tlm.Transaction) {
				Fail("no transaction expected")
			})

			h := MakeBuilder().
				WithEngine(engine).
				WithBus(bus).
				WithProgram(FIRProgram(l)).
				Build("Host")

			Expect(engine.Run()).To(HaveOccurred())
			Expect(h.Err()).To(HaveOccurred())
		},
		Entry("taps", FIRLayout{Taps: 6, ChunkBytes: 32, Segments: []int{4}}),
		Entry("chunk", FIRLayout{Taps: 4, ChunkBytes: 12, Segments: []int{4}}),
		Entry("segment", FIRLayout{Taps: 4, ChunkBytes: 32, Segments: []int{6}}),
	)
})
