package memctl

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Timing", func() {
	var t Timing

	BeforeEach(func() {
		t = DefaultTiming()
	})

	It("should deliver 4 bytes per beat", func() {
		Expect(t.BytesPerBeat()).To(Equal(uint64(4)))
	})

	DescribeTable("read cycles",
		func(length uint64, kind AccessKind, cycles uint64) {
			Expect(t.ReadCycles(length, kind)).To(Equal(cycles))
		},
		Entry("row hit, 8 bytes", uint64(8), RowHit, uint64(4)),
		Entry("row hit, 9 bytes", uint64(9), RowHit, uint64(5)),
		Entry("first access, 8 bytes", uint64(8), FirstAccess, uint64(6)),
		Entry("row miss, 8 bytes", uint64(8), RowMiss, uint64(9)),
		Entry("row hit, 1 byte", uint64(1), RowHit, uint64(3)),
	)

	DescribeTable("write cycles",
		func(length uint64, cycles uint64) {
			Expect(t.WriteCycles(length)).To(Equal(cycles))
		},
		Entry("1 byte", uint64(1), uint64(1)),
		Entry("8 bytes", uint64(8), uint64(1)),
		Entry("9 bytes", uint64(9), uint64(2)),
		Entry("64 bytes", uint64(64), uint64(8)),
	)
})

var _ = Describe("Bank table", func() {
	It("should map address bits 14:13 to banks", func() {
		Expect(BankID(0x0000)).To(Equal(0))
		Expect(BankID(0x2000)).To(Equal(1))
		Expect(BankID(0x4000)).To(Equal(2))
		Expect(BankID(0x6000)).To(Equal(3))
		Expect(BankID(0x8000)).To(Equal(0))
	})

	It("should mask the low 13 bits for the row", func() {
		Expect(Row(0x2345)).To(Equal(uint64(0x2000)))
		Expect(Row(0x1fff)).To(Equal(uint64(0)))
	})

	It("should classify reads", func() {
		var banks bankTable

		Expect(banks.read(0x2000)).To(Equal(FirstAccess))
		Expect(banks.read(0x2100)).To(Equal(RowHit))
		Expect(banks.read(0xa000)).To(Equal(RowMiss))
		Expect(banks.read(0xa008)).To(Equal(RowHit))
		Expect(banks.read(0x0000)).To(Equal(FirstAccess))
	})

	It("should record writes as accesses", func() {
		var banks bankTable

		banks.write(0x4010)

		Expect(banks.read(0x4000)).To(Equal(RowHit))
	})
})
