// Package verify cross-checks decoded instructions against the
// golang.org/x/arch x86 decoder running in 16-bit mode.
package verify

import (
	"fmt"
	"strings"

	"golang.org/x/arch/x86/x86asm"

	"sim86/internal/decoder"
)

// x86asm operation names for our mnemonics where they differ by more than case.
var refNames = map[string]string{
	"jnb":    "JAE",
	"jnbe":   "JA",
	"jnl":    "JGE",
	"jnle":   "JG",
	"loopz":  "LOOPE",
	"loopnz": "LOOPNE",
}

// Mismatch describes an instruction the reference decoder disagrees with.
type Mismatch struct {
	Offset  int
	Text    string // our rendering
	Length  int
	RefOp   string
	RefLen  int
	RefText string // reference rendering in Intel syntax
	Err     error  // reference decode error, if any
}

func (m Mismatch) String() string {
	if m.Err != nil {
		return fmt.Sprintf("%04x: %q: reference decoder failed: %v", m.Offset, m.Text, m.Err)
	}
	return fmt.Sprintf("%04x: %q (%d bytes) vs %s %q (%d bytes)",
		m.Offset, m.Text, m.Length, m.RefOp, m.RefText, m.RefLen)
}

// ExpectedOp returns the x86asm operation name for a mnemonic.
func ExpectedOp(m decoder.Mnemonic) string {
	name := m.String()
	if ref, ok := refNames[name]; ok {
		return ref
	}
	return strings.ToUpper(name)
}

// Instruction checks a single decoded instruction. The reference decoder
// sees exactly the instruction's own bytes, so a length disagreement shows
// up as either a decode error or a different Len.
func Instruction(ins decoder.Instruction) (Mismatch, bool) {
	m := Mismatch{
		Offset: ins.Offset,
		Text:   decoder.Format(ins),
		Length: ins.Size(),
	}

	ref, err := x86asm.Decode(ins.Bytes, 16)
	if err != nil {
		m.Err = err
		return m, false
	}
	m.RefOp = ref.Op.String()
	m.RefLen = ref.Len
	m.RefText = x86asm.IntelSyntax(ref, uint64(ins.Offset), nil)

	if m.RefLen != m.Length || m.RefOp != ExpectedOp(ins.Mnemonic) {
		return m, false
	}
	return m, true
}

// Report summarizes a verification run.
type Report struct {
	Checked    int
	Mismatches []Mismatch
	DecodeErr  error // error that stopped our decoder, if any
}

// OK reports whether every instruction matched and decoding finished.
func (r Report) OK() bool {
	return len(r.Mismatches) == 0 && r.DecodeErr == nil
}

// Bytes decodes data and checks every instruction.
func Bytes(data []byte) Report {
	decoded, err := decoder.Decode(data)
	r := Report{DecodeErr: err}
	for _, ins := range decoded {
		r.Checked++
		if m, ok := Instruction(ins); !ok {
			r.Mismatches = append(r.Mismatches, m)
		}
	}
	return r
}
