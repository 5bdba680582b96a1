// Package decoder decodes a subset of the 8086 instruction set
// (mov, add, sub, cmp, conditional jumps and the loop family) and
// renders each instruction as a line of nasm-compatible assembly.
package decoder

import (
	"errors"
	"io"
)

// Decoder decodes instructions from a byte stream in order.
// The first error is sticky: once decoding fails every later call
// to Next returns the same error.
type Decoder struct {
	cur *Cursor
	err error
}

// New returns a decoder over data.
func New(data []byte) *Decoder {
	return &Decoder{cur: NewCursor(data)}
}

// Offset is the number of bytes consumed so far.
func (d *Decoder) Offset() int {
	return d.cur.Offset()
}

// Next decodes the instruction at the current position. It returns io.EOF
// when the stream ends on an instruction boundary and a *DecodeError for
// unsupported or truncated instructions.
func (d *Decoder) Next() (Instruction, error) {
	if d.err != nil {
		return Instruction{}, d.err
	}

	if d.cur.Done() {
		return Instruction{}, io.EOF
	}
	start := d.cur.Offset()
	op, err := d.cur.Next()
	if err != nil {
		return Instruction{}, err
	}

	ins, err := d.decode(op)
	if err != nil {
		bad := op
		if errors.Is(err, ErrUnsupportedALUOp) {
			consumed := d.cur.Since(start)
			bad = consumed[len(consumed)-1]
		}
		d.err = &DecodeError{Offset: start, Byte: bad, Err: err}
		return Instruction{}, d.err
	}

	ins.Offset = start
	ins.Bytes = d.cur.Since(start)
	return ins, nil
}

func (d *Decoder) decode(op byte) (Instruction, error) {
	switch {
	case op&0b11111100 == 0b10001000:
		return d.regMemory(Mov, op)
	case op&0b11111100 == 0b00000000:
		return d.regMemory(Add, op)
	case op&0b11111100 == 0b00101000:
		return d.regMemory(Sub, op)
	case op&0b11111100 == 0b00111000:
		return d.regMemory(Cmp, op)

	case op&0b11111100 == 0b10000000:
		return d.immediateToRM(op)

	case op&0b11111110 == 0b00000100:
		return d.immediateToAccumulator(Add, op)
	case op&0b11111110 == 0b00101100:
		return d.immediateToAccumulator(Sub, op)
	case op&0b11111110 == 0b00111100:
		return d.immediateToAccumulator(Cmp, op)

	case op&0b11110000 == 0b10110000:
		return d.immediateToRegister(op)

	case op&0b11110000 == 0b01110000:
		return d.shortBranch(Mnemonic{Kind: Jump, Cond: op & 0x0f})
	case op&0b11111100 == 0b11100000:
		return d.shortBranch(Mnemonic{Kind: Loop, Cond: op & 0b11})
	}
	return Instruction{}, ErrUnsupportedOpcode
}

// regMemory decodes the `ooooood w` register/memory forms. The d bit
// selects whether the reg field is the destination.
func (d *Decoder) regMemory(kind Kind, op byte) (Instruction, error) {
	w := widthOf(op)
	b, err := next(d.cur)
	if err != nil {
		return Instruction{}, err
	}
	m := splitModRM(b)

	reg := Register{Index: m.reg, Width: w}
	rm, err := resolveRM(d.cur, m, w)
	if err != nil {
		return Instruction{}, err
	}

	operands := []Operand{rm, reg}
	if op&0b10 != 0 {
		operands = []Operand{reg, rm}
	}
	return Instruction{Mnemonic: Mnemonic{Kind: kind}, Operands: operands, Width: w}, nil
}

// aluOps maps the reg field of 100000sw to the operation.
// Zero entries are unsupported.
var aluOps = [8]Kind{0b000: Add, 0b101: Sub, 0b111: Cmp}

func (d *Decoder) immediateToRM(op byte) (Instruction, error) {
	w := widthOf(op)
	signExtend := op&0b10 != 0

	b, err := next(d.cur)
	if err != nil {
		return Instruction{}, err
	}
	m := splitModRM(b)
	kind := aluOps[m.reg]
	if kind == 0 {
		return Instruction{}, ErrUnsupportedALUOp
	}

	rm, err := resolveRM(d.cur, m, w)
	if err != nil {
		return Instruction{}, err
	}
	imm, err := readImmediate(d.cur, w, signExtend)
	if err != nil {
		return Instruction{}, err
	}

	return Instruction{
		Mnemonic: Mnemonic{Kind: kind},
		Operands: []Operand{rm, imm},
		Width:    w,
		Sized:    IsMemory(rm),
	}, nil
}

func (d *Decoder) immediateToAccumulator(kind Kind, op byte) (Instruction, error) {
	w := widthOf(op)
	imm, err := readImmediate(d.cur, w, false)
	if err != nil {
		return Instruction{}, err
	}
	return Instruction{
		Mnemonic: Mnemonic{Kind: kind},
		Operands: []Operand{Register{Index: 0, Width: w}, imm},
		Width:    w,
	}, nil
}

// immediateToRegister decodes mov 1011wreg.
func (d *Decoder) immediateToRegister(op byte) (Instruction, error) {
	w := widthOf(op >> 3)
	imm, err := readImmediate(d.cur, w, false)
	if err != nil {
		return Instruction{}, err
	}
	return Instruction{
		Mnemonic: Mnemonic{Kind: Mov},
		Operands: []Operand{Register{Index: op & 0b111, Width: w}, imm},
		Width:    w,
	}, nil
}

func (d *Decoder) shortBranch(m Mnemonic) (Instruction, error) {
	b, err := next(d.cur)
	if err != nil {
		return Instruction{}, err
	}
	return Instruction{
		Mnemonic: m,
		Operands: []Operand{Immediate{Value: int16(int8(b)), Width: Byte}},
		Width:    Byte,
	}, nil
}
