package mem_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hetsim/mem"
)

var _ = Describe("Storage", func() {
	It("should read and write in single unit", func() {
		storage := mem.NewStorage(4096)
		Expect(storage.Write(0, []byte{1, 2, 3, 4})).To(Succeed())

		res, err := storage.Read(0, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal([]byte{1, 2}))

		res, _ = storage.Read(1, 2)
		Expect(res).To(Equal([]byte{2, 3}))
	})

	It("should read and write across units", func() {
		storage := mem.NewStorage(8192)
		Expect(storage.Write(4094, []byte{1, 2, 3, 4})).To(Succeed())

		res, _ := storage.Read(4094, 4)
		Expect(res).To(Equal([]byte{1, 2, 3, 4}))
	})

	It("should read zeros from untouched memory", func() {
		storage := mem.NewStorage(64 * mem.KB)

		res, err := storage.Read(0x8000, 3)

		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal([]byte{0, 0, 0}))
	})

	It("should return error if accessing over the capacity", func() {
		storage := mem.NewStorage(4096)

		err := storage.Write(4097, []byte{1})
		Expect(err).To(MatchError(mem.ErrAddressOutOfRange))

		_, err = storage.Read(4096, 1)
		Expect(err).To(MatchError(mem.ErrAddressOutOfRange))
	})

	It("should not partially write an access that crosses the end", func() {
		storage := mem.NewStorage(4096)
		Expect(storage.Write(4092, []byte{9, 9, 9, 9})).To(Succeed())

		err := storage.Write(4094, []byte{1, 2, 3, 4})
		Expect(err).To(MatchError(mem.ErrAddressOutOfRange))

		res, _ := storage.Read(4092, 4)
		Expect(res).To(Equal([]byte{9, 9, 9, 9}))
	})
})
