package decoder

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncated is returned when the stream ends inside an instruction.
	ErrTruncated = errors.New("truncated instruction")

	// ErrUnsupportedOpcode is returned for a leading byte outside the supported subset.
	ErrUnsupportedOpcode = errors.New("unsupported opcode")

	// ErrUnsupportedALUOp is returned when the reg field of an immediate ALU
	// addressing byte names an operation other than add, sub or cmp.
	ErrUnsupportedALUOp = fmt.Errorf("%w: alu sub-opcode", ErrUnsupportedOpcode)
)

// DecodeError describes where decoding stopped.
type DecodeError struct {
	Offset int  // offset of the first byte of the failing instruction
	Byte   byte // the byte that could not be decoded (opcode or addressing byte)
	Err    error
}

func (e *DecodeError) Error() string {
	if errors.Is(e.Err, ErrTruncated) {
		return fmt.Sprintf("%s at offset %d (opcode 0x%02X)", e.Err, e.Offset, e.Byte)
	}
	return fmt.Sprintf("%s 0x%02X at offset %d", e.Err, e.Byte, e.Offset)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
