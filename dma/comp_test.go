package dma

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/hetsim/mem/memctl"
	"github.com/sarchlab/hetsim/sim"
	"github.com/sarchlab/hetsim/tlm"
)

func writeReg(p *sim.Process, target tlm.Target, offset, value uint64) tlm.Status {
	data := make([]byte, 8)
	tlm.PutUint64LE(data, value)

	txn := tlm.NewWrite(offset, data)
	target.Call(p, txn)

	return txn.Status
}

func readReg(p *sim.Process, target tlm.Target, offset uint64) (uint64, tlm.Status) {
	txn := tlm.NewRead(offset, 8)
	target.Call(p, txn)

	return tlm.Uint64LE(txn.Data), txn.Status
}

var _ = Describe("Comp", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *sim.SerialEngine
		bus      *MockTarget
		dma      *Comp
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = sim.NewSerialEngine()
		bus = NewMockTarget(mockCtrl)
		dma = MakeBuilder().
			WithEngine(engine).
			WithBus(bus).
			Build("DMA")
	})

	AfterEach(func() {
		engine.Finished()
		mockCtrl.Finish()
	})

	It("should take the register latency on each access", func() {
		var value uint64
		var status tlm.Status
		var end sim.VTime

		engine.Spawn("host", func(p *sim.Process) {
			writeReg(p, dma, RegControl, 0x2)
			value, status = readReg(p, dma, RegControl)
			end = p.Now()
		})

		Expect(engine.Run()).To(Succeed())
		Expect(status).To(Equal(tlm.Ok))
		Expect(value).To(Equal(uint64(0x2)))
		Expect(end).To(Equal(2 * sim.NS))
	})

	It("should write the low bytes of a register", func() {
		var value uint64

		engine.Spawn("host", func(p *sim.Process) {
			writeReg(p, dma, RegSource, 0x1122334455667788)

			txn := tlm.NewWrite(RegSource, []byte{0xaa, 0xbb})
			dma.Call(p, txn)
			Expect(txn.Status).To(Equal(tlm.Ok))

			value, _ = readReg(p, dma, RegSource)
		})

		Expect(engine.Run()).To(Succeed())
		Expect(value).To(Equal(uint64(0x112233445566bbaa)))
	})

	DescribeTable("invalid register accesses",
		func(txn *tlm.Transaction) {
			var end sim.VTime

			engine.Spawn("host", func(p *sim.Process) {
				dma.Call(p, txn)
				end = p.Now()
			})

			Expect(engine.Run()).To(Succeed())
			Expect(txn.Status).To(Equal(tlm.CommandError))
			Expect(end).To(Equal(sim.VTime(0)))
		},
		Entry("write to status", tlm.NewWrite(RegStatus, make([]byte, 8))),
		Entry("unaligned offset", tlm.NewRead(0x04, 4)),
		Entry("outside the window", tlm.NewRead(0x28, 8)),
		Entry("wider than a register", tlm.NewRead(RegSource, 16)),
		Entry("ignore command", tlm.MakeTransactionBuilder().
			WithCommand(tlm.Ignore).
			WithLength(8).
			Build()),
	)

	It("should move data and stay busy until the write completes", func() {
		var readStart, writeEnd, idleAt sim.VTime

		type sample struct {
			time   sim.VTime
			status uint64
		}
		var samples []sample

		bus.EXPECT().
			Call(gomock.Any(), gomock.Any()).
			Do(func(p *sim.Process, txn *tlm.Transaction) {
				Expect(txn.Command).To(Equal(tlm.Read))
				Expect(txn.Address).To(Equal(uint64(0x100)))
				Expect(txn.Length).To(Equal(uint64(4)))

				readStart = p.Now()
				p.Wait(50 * sim.NS)
				copy(txn.Data, []byte{1, 2, 3, 4})
				txn.Complete(tlm.Ok)
			})
		bus.EXPECT().
			Call(gomock.Any(), gomock.Any()).
			Do(func(p *sim.Process, txn *tlm.Transaction) {
				Expect(txn.Command).To(Equal(tlm.Write))
				Expect(txn.Address).To(Equal(uint64(0x800)))
				Expect(txn.Data).To(Equal([]byte{1, 2, 3, 4}))

				p.Wait(30 * sim.NS)
				txn.Complete(tlm.Ok)
				writeEnd = p.Now()
			})

		done := false
		engine.Spawn("host", func(p *sim.Process) {
			writeReg(p, dma, RegSource, 0x100)
			writeReg(p, dma, RegDestination, 0x800)
			Expect(writeReg(p, dma, RegLength, 4)).To(Equal(tlm.Ok))
			idleAt = p.Now()
			done = true
		})
		engine.Spawn("poller", func(p *sim.Process) {
			for !done {
				status, _ := readReg(p, dma, RegStatus)
				samples = append(samples, sample{p.Now(), status})
				p.Wait(2 * sim.NS)
			}

			status, _ := readReg(p, dma, RegStatus)
			samples = append(samples, sample{p.Now(), status})
		})

		Expect(engine.Run()).To(Succeed())
		Expect(writeEnd).To(BeNumerically(">", readStart))
		Expect(idleAt).To(BeNumerically(">=", writeEnd))

		busy := 0
		for _, s := range samples {
			switch {
			case s.time > readStart && s.time <= writeEnd:
				Expect(s.status).To(Equal(StatusBusy), "at %s", s.time)
				busy++
			case s.time > idleAt:
				Expect(s.status).To(Equal(StatusIdle), "at %s", s.time)
			}
		}
		Expect(busy).To(BeNumerically(">", 10))
		Expect(samples[len(samples)-1].status).To(Equal(StatusIdle))
		Expect(dma.Stats().Transfers).To(Equal(uint64(1)))
		Expect(dma.Stats().BytesMoved).To(Equal(uint64(4)))
	})

	It("should return the read error and skip the write", func() {
		var status tlm.Status

		bus.EXPECT().
			Call(gomock.Any(), gomock.Any()).
			Do(func(_ *sim.Process, txn *tlm.Transaction) {
				txn.Complete(tlm.AddressError)
			})

		engine.Spawn("host", func(p *sim.Process) {
			writeReg(p, dma, RegSource, 0xffff0000)
			status = writeReg(p, dma, RegLength, 16)
		})

		Expect(engine.Run()).To(Succeed())
		Expect(status).To(Equal(tlm.AddressError))
		Expect(dma.Registers().Status).To(Equal(StatusIdle))
		Expect(dma.Stats().FailedTransfer).To(Equal(uint64(1)))
	})

	It("should return the write error", func() {
		var status tlm.Status

		bus.EXPECT().
			Call(gomock.Any(), gomock.Any()).
			Do(func(_ *sim.Process, txn *tlm.Transaction) {
				txn.Complete(tlm.Ok)
			})
		bus.EXPECT().
			Call(gomock.Any(), gomock.Any()).
			Do(func(_ *sim.Process, txn *tlm.Transaction) {
				txn.Complete(tlm.CommandError)
			})

		engine.Spawn("host", func(p *sim.Process) {
			status = writeReg(p, dma, RegLength, 16)
		})

		Expect(engine.Run()).To(Succeed())
		Expect(status).To(Equal(tlm.CommandError))
	})

	It("should abort the simulation if the transfer overflows the buffer", func() {
		var status tlm.Status

		engine.Spawn("host", func(p *sim.Process) {
			status = writeReg(p, dma, RegLength, StagingBufferSize+1)
		})

		err := engine.Run()

		Expect(errors.Is(err, ErrStagingOverflow)).To(BeTrue())
		Expect(status).To(Equal(tlm.CommandError))
		Expect(dma.Registers().Status).To(Equal(StatusIdle))
	})

	It("should accept a transfer that fills the buffer", func() {
		var status tlm.Status

		bus.EXPECT().
			Call(gomock.Any(), gomock.Any()).
			Times(2).
			Do(func(_ *sim.Process, txn *tlm.Transaction) {
				Expect(txn.Length).To(Equal(uint64(StagingBufferSize)))
				txn.Complete(tlm.Ok)
			})

		engine.Spawn("host", func(p *sim.Process) {
			status = writeReg(p, dma, RegLength, StagingBufferSize)
		})

		Expect(engine.Run()).To(Succeed())
		Expect(status).To(Equal(tlm.Ok))
	})

	It("should serialize transfers", func() {
		var firstEnd, secondStart sim.VTime
		calls := 0

		bus.EXPECT().
			Call(gomock.Any(), gomock.Any()).
			Times(4).
			Do(func(p *sim.Process, txn *tlm.Transaction) {
				calls++
				if calls == 3 {
					secondStart = p.Now()
				}

				p.Wait(10 * sim.NS)
				txn.Complete(tlm.Ok)

				if calls == 2 {
					firstEnd = p.Now()
				}
			})

		for _, name := range []string{"hostA", "hostB"} {
			engine.Spawn(name, func(p *sim.Process) {
				writeReg(p, dma, RegLength, 8)
			})
		}

		Expect(engine.Run()).To(Succeed())
		Expect(secondStart).To(BeNumerically(">=", firstEnd))
		Expect(dma.Stats().Transfers).To(Equal(uint64(2)))
	})

	It("should use the registers latched by the trigger write", func() {
		type access struct {
			address, length uint64
		}
		var reads []access

		bus.EXPECT().
			Call(gomock.Any(), gomock.Any()).
			Times(4).
			Do(func(p *sim.Process, txn *tlm.Transaction) {
				if txn.Command == tlm.Read {
					reads = append(reads, access{txn.Address, txn.Length})
				}

				p.Wait(10 * sim.NS)
				txn.Complete(tlm.Ok)
			})

		engine.Spawn("hostA", func(p *sim.Process) {
			writeReg(p, dma, RegSource, 0x100)
			writeReg(p, dma, RegDestination, 0x800)
			writeReg(p, dma, RegLength, 4)
		})
		engine.Spawn("hostB", func(p *sim.Process) {
			p.Wait(5 * sim.NS)
			writeReg(p, dma, RegLength, 8)
		})
		engine.Spawn("hostC", func(p *sim.Process) {
			p.Wait(7 * sim.NS)
			writeReg(p, dma, RegSource, 0x400)
		})

		Expect(engine.Run()).To(Succeed())
		Expect(reads).To(Equal([]access{{0x100, 4}, {0x100, 8}}))
		Expect(dma.Registers().Source).To(Equal(uint64(0x400)))
	})
})

var _ = Describe("Comp with memory", func() {
	It("should copy a block between two memory regions", func() {
		engine := sim.NewSerialEngine()
		defer engine.Finished()

		block := []byte{0xde, 0xad, 0xbe, 0xef, 0x01, 0x02, 0x03, 0x04}
		memCtl := memctl.MakeBuilder().
			WithMemorySize(0x10000).
			WithPreload(0x2000, block).
			Build("Mem")

		router := tlm.NewRouter("Bus")
		router.Map(0, 0x10000, memCtl)

		dma := MakeBuilder().
			WithEngine(engine).
			WithBus(router).
			Build("DMA")

		engine.Spawn("host", func(p *sim.Process) {
			writeReg(p, dma, RegSource, 0x2000)
			writeReg(p, dma, RegDestination, 0x8000)
			Expect(writeReg(p, dma, RegLength, uint64(len(block)))).
				To(Equal(tlm.Ok))
		})

		Expect(engine.Run()).To(Succeed())

		data, err := memCtl.Storage().Read(0x8000, uint64(len(block)))
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal(block))
	})

	It("should abort a transfer that writes its own length register", func() {
		engine := sim.NewSerialEngine()
		defer engine.Finished()

		length := make([]byte, 8)
		tlm.PutUint64LE(length, 8)
		memCtl := memctl.MakeBuilder().
			WithMemorySize(0x10000).
			WithPreload(0x2000, length).
			Build("Mem")

		router := tlm.NewRouter("Bus")
		dma := MakeBuilder().
			WithEngine(engine).
			WithBus(router).
			Build("DMA")
		router.Map(0, 0x10000, memCtl)
		router.Map(0x10000, 0x28, dma)

		var status tlm.Status
		engine.Spawn("host", func(p *sim.Process) {
			writeReg(p, dma, RegSource, 0x2000)
			writeReg(p, dma, RegDestination, 0x10000+RegLength)
			status = writeReg(p, dma, RegLength, 8)
		})

		err := engine.Run()
		Expect(errors.Is(err, ErrNestedTransfer)).To(BeTrue())
		Expect(status).To(Equal(tlm.CommandError))
		Expect(dma.Registers().Status).To(Equal(uint64(StatusIdle)))
		Expect(dma.Stats().FailedTransfer).To(Equal(uint64(1)))
	})
})
