package decoder

// Width is the operand size selected by the w bit.
type Width uint8

const (
	Byte Width = iota
	Word
)

func (w Width) String() string {
	if w == Word {
		return "word"
	}
	return "byte"
}

func widthOf(bit byte) Width {
	if bit&1 != 0 {
		return Word
	}
	return Byte
}

var (
	reg8  = [8]string{"al", "cl", "dl", "bl", "ah", "ch", "dh", "bh"}
	reg16 = [8]string{"ax", "cx", "dx", "bx", "sp", "bp", "si", "di"}

	// effective address base expressions, indexed by rm
	effAddr = [8]string{"bx + si", "bx + di", "bp + si", "bp + di", "si", "di", "bp", "bx"}
)

// Operand is one of Register, DirectAddress, Indexed or Immediate.
type Operand interface {
	operand()
}

// Register names one of the eight general registers at the given width.
type Register struct {
	Index uint8
	Width Width
}

// Name returns the two-letter register mnemonic.
func (r Register) Name() string {
	if r.Width == Word {
		return reg16[r.Index&7]
	}
	return reg8[r.Index&7]
}

// DirectAddress is an absolute 16-bit memory reference (mod=00, rm=110).
type DirectAddress struct {
	Address uint16
}

// Indexed is a memory reference through one of the eight base/index
// combinations. HasDisp is false only for mod=00.
type Indexed struct {
	RM      uint8
	Disp    int16
	HasDisp bool
}

// Base returns the base expression selected by rm, e.g. "bx + si".
func (m Indexed) Base() string {
	return effAddr[m.RM&7]
}

// Immediate is a literal operand. Jump and loop offsets are byte immediates.
type Immediate struct {
	Value int16
	Width Width
}

func (Register) operand()      {}
func (DirectAddress) operand() {}
func (Indexed) operand()       {}
func (Immediate) operand()     {}

// IsMemory reports whether op references memory.
func IsMemory(op Operand) bool {
	switch op.(type) {
	case DirectAddress, Indexed:
		return true
	}
	return false
}

// mod field values
const (
	modMemory    = 0b00
	modMemDisp8  = 0b01
	modMemDisp16 = 0b10
	modRegister  = 0b11
)

// rm value that means a direct address when mod is modMemory
const rmDirect = 0b110

type modRM struct {
	mod, reg, rm uint8
}

func splitModRM(b byte) modRM {
	return modRM{
		mod: b >> 6,
		reg: (b >> 3) & 0b111,
		rm:  b & 0b111,
	}
}

// resolveRM decodes the operand selected by mod and rm, consuming any
// displacement or direct address bytes that follow the addressing byte.
func resolveRM(c *Cursor, m modRM, w Width) (Operand, error) {
	switch m.mod {
	case modRegister:
		return Register{Index: m.rm, Width: w}, nil

	case modMemory:
		if m.rm == rmDirect {
			addr, err := readWord(c)
			if err != nil {
				return nil, err
			}
			return DirectAddress{Address: addr}, nil
		}
		return Indexed{RM: m.rm}, nil

	case modMemDisp8:
		b, err := next(c)
		if err != nil {
			return nil, err
		}
		return Indexed{RM: m.rm, Disp: int16(int8(b)), HasDisp: true}, nil

	default: // modMemDisp16
		v, err := readWord(c)
		if err != nil {
			return nil, err
		}
		return Indexed{RM: m.rm, Disp: int16(v), HasDisp: true}, nil
	}
}
