package memctl

// NumBanks is the number of banks. The bank of an address is selected by
// address bits [14:13].
const NumBanks = 4

const (
	bankShift = 13
	rowMask   = uint64(1)<<bankShift - 1
)

// AccessKind classifies a read by the state of the bank it lands in.
type AccessKind int

// Access kinds.
const (
	FirstAccess AccessKind = iota
	RowHit
	RowMiss
)

func (k AccessKind) String() string {
	switch k {
	case FirstAccess:
		return "FirstAccess"
	case RowHit:
		return "RowHit"
	case RowMiss:
		return "RowMiss"
	default:
		return "Unknown"
	}
}

// BankID returns the bank that an address maps to.
func BankID(addr uint64) int {
	return int(addr>>bankShift) & (NumBanks - 1)
}

// Row returns the row of an address, that is, the address with its low 13
// bits cleared.
func Row(addr uint64) uint64 {
	return addr &^ rowMask
}

type bankState struct {
	initialized bool
	lastAddress uint64
}

type bankTable [NumBanks]bankState

// read classifies a read and records it as the last access of its bank.
func (t *bankTable) read(addr uint64) AccessKind {
	b := &t[BankID(addr)]

	kind := RowMiss

	switch {
	case !b.initialized:
		kind = FirstAccess
	case Row(b.lastAddress) == Row(addr):
		kind = RowHit
	}

	b.initialized = true
	b.lastAddress = addr

	return kind
}

func (t *bankTable) write(addr uint64) {
	b := &t[BankID(addr)]
	b.initialized = true
	b.lastAddress = addr
}
