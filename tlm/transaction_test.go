package tlm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Transaction", func() {
	It("should build with a zero-padded payload", func() {
		txn := MakeTransactionBuilder().
			WithCommand(Write).
			WithAddress(0x100).
			WithLength(4).
			WithData([]byte{1, 2}).
			WithParentID("parent").
			Build()

		Expect(txn.ID).NotTo(BeEmpty())
		Expect(txn.ParentID).To(Equal("parent"))
		Expect(txn.Address).To(Equal(uint64(0x100)))
		Expect(txn.Length).To(Equal(uint64(4)))
		Expect(txn.Data).To(Equal([]byte{1, 2, 0, 0}))
		Expect(txn.Status).To(Equal(Incomplete))
	})

	It("should take the length from the payload", func() {
		txn := NewWrite(0, []byte{1, 2, 3})

		Expect(txn.Length).To(Equal(uint64(3)))
		Expect(txn.Command).To(Equal(Write))
	})

	It("should give each transaction its own id", func() {
		a := NewRead(0, 8)
		b := NewRead(0, 8)

		Expect(a.ID).NotTo(Equal(b.ID))
		Expect(a.Data).To(HaveLen(8))
	})

	It("should complete only once", func() {
		txn := NewRead(0, 1)
		txn.Complete(Ok)

		Expect(txn.IsOk()).To(BeTrue())
		Expect(func() { txn.Complete(AddressError) }).To(Panic())
	})

	It("should not complete as incomplete", func() {
		txn := NewRead(0, 1)
		Expect(func() { txn.Complete(Incomplete) }).To(Panic())
	})

	It("should print names", func() {
		Expect(Write.String()).To(Equal("Write"))
		Expect(CommandError.String()).To(Equal("CommandError"))
	})
})

var _ = Describe("Data helpers", func() {
	It("should print most significant byte first", func() {
		Expect(DataString([]byte{0x0f, 0x00, 0xab})).To(Equal("0xab000f"))
	})

	It("should convert little-endian words", func() {
		buf := make([]byte, 8)
		PutUint64LE(buf, 0x0102030405060708)

		Expect(buf[0]).To(Equal(byte(0x08)))
		Expect(Uint64LE(buf)).To(Equal(uint64(0x0102030405060708)))
		Expect(Uint64LE([]byte{0x34, 0x12})).To(Equal(uint64(0x1234)))

		short := make([]byte, 2)
		PutUint64LE(short, 0xaabbcc)
		Expect(short).To(Equal([]byte{0xcc, 0xbb}))
	})
})
