// Package mem provides the byte storage shared by the memory models.
package mem

import (
	"errors"
	"fmt"
)

// Units of storage capacity.
const (
	KB uint64 = 1 << 10
	MB uint64 = 1 << 20
	GB uint64 = 1 << 30
)

// ErrAddressOutOfRange is returned when an access touches bytes beyond the
// capacity of a storage.
var ErrAddressOutOfRange = errors.New("accessing address beyond the storage capacity")

// A Storage keeps the data of the simulated memory.
//
// The storage implementation manages the storage in units. The unit is
// similar to the concept of page in memory management. For the units that
// are not touched by Read and Write function, no memory will be allocated.
// An access that does not fully fit in the capacity fails as a whole and does
// not modify any byte.
type Storage struct {
	unitSize uint64
	capacity uint64
	data     map[uint64][]byte
}

// NewStorage creates a storage object with the specified capacity
func NewStorage(capacity uint64) *Storage {
	storage := new(Storage)

	storage.unitSize = 4 * KB
	storage.capacity = capacity
	storage.data = make(map[uint64][]byte)

	return storage
}

// Capacity returns the number of bytes the storage can hold.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

func (s *Storage) checkRange(address, length uint64) error {
	if address >= s.capacity || length > s.capacity-address {
		return fmt.Errorf("%w: [0x%x, 0x%x), capacity 0x%x",
			ErrAddressOutOfRange, address, address+length, s.capacity)
	}

	return nil
}

func (s *Storage) unit(address uint64) []byte {
	baseAddr, _ := s.parseAddress(address)

	unit, ok := s.data[baseAddr]
	if !ok {
		unit = make([]byte, s.unitSize)
		s.data[baseAddr] = unit
	}

	return unit
}

func (s *Storage) parseAddress(addr uint64) (baseAddr, inUnitAddr uint64) {
	inUnitAddr = addr % s.unitSize
	baseAddr = addr - inUnitAddr

	return
}

// Read returns a copy of length bytes starting at address.
func (s *Storage) Read(address uint64, length uint64) ([]byte, error) {
	if err := s.checkRange(address, length); err != nil {
		return nil, err
	}

	res := make([]byte, length)
	currAddr := address
	dataOffset := uint64(0)

	for dataOffset < length {
		unit := s.unit(currAddr)
		_, inUnitAddr := s.parseAddress(currAddr)
		n := min(length-dataOffset, s.unitSize-inUnitAddr)

		copy(res[dataOffset:dataOffset+n], unit[inUnitAddr:inUnitAddr+n])

		dataOffset += n
		currAddr += n
	}

	return res, nil
}

// Write copies data into the storage starting at address.
func (s *Storage) Write(address uint64, data []byte) error {
	length := uint64(len(data))
	if err := s.checkRange(address, length); err != nil {
		return err
	}

	currAddr := address
	dataOffset := uint64(0)

	for dataOffset < length {
		unit := s.unit(currAddr)
		_, inUnitAddr := s.parseAddress(currAddr)
		n := min(length-dataOffset, s.unitSize-inUnitAddr)

		copy(unit[inUnitAddr:inUnitAddr+n], data[dataOffset:dataOffset+n])

		dataOffset += n
		currAddr += n
	}

	return nil
}
