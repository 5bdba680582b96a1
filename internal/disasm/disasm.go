// Package disasm defines the listing representation shared by the
// output writer, the interactive viewer and the verifier.
package disasm

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"sim86/internal/decoder"
)

// Header is the nasm directive that makes a listing reassemblable.
const Header = "bits 16"

// Inst is a decoded instruction placed at an address.
type Inst struct {
	Addr   uint32 // origin + stream offset
	Text   string // canonical assembly text
	Op     string // mnemonic in lowercase
	Raw    []byte // raw encoding
	Target int64  // absolute branch target wrapped to 16 bits, -1 if none
}

// Stream is a linear sequence of instructions.
type Stream []Inst

// FromDecoded places ins at origin.
func FromDecoded(origin uint32, ins decoder.Instruction) Inst {
	target := int64(-1)
	if t, ok := ins.Target(); ok {
		// the instruction pointer is 16 bits wide
		target = (int64(origin) + int64(t)) & 0xFFFF
	}
	return Inst{
		Addr:   origin + uint32(ins.Offset),
		Text:   decoder.Format(ins),
		Op:     ins.Mnemonic.String(),
		Raw:    ins.Bytes,
		Target: target,
	}
}

// Build converts decoded instructions to a stream.
func Build(origin uint32, decoded []decoder.Instruction) Stream {
	s := make(Stream, 0, len(decoded))
	for _, ins := range decoded {
		s = append(s, FromDecoded(origin, ins))
	}
	return s
}

// LineOptions selects the annotations appended after the instruction text.
type LineOptions struct {
	Offsets bool // address and branch target
	Bytes   bool // raw encoding in hex
}

// Line formats the instruction. Annotations go into a trailing comment so
// the instruction text itself stays unchanged.
func (i Inst) Line(opts LineOptions) string {
	var notes []string
	if opts.Offsets {
		notes = append(notes, fmt.Sprintf("%04x", i.Addr))
	}
	if opts.Bytes {
		notes = append(notes, fmt.Sprintf("% x", i.Raw))
	}
	if opts.Offsets && i.Target >= 0 {
		notes = append(notes, fmt.Sprintf("-> %04x", i.Target))
	}
	if len(notes) == 0 {
		return i.Text
	}
	return fmt.Sprintf("%-30s ; %s", i.Text, strings.Join(notes, "  "))
}

// Write emits one line per instruction, optionally preceded by Header.
func (s Stream) Write(w io.Writer, header bool, opts LineOptions) error {
	bw := bufio.NewWriter(w)
	if header {
		fmt.Fprintln(bw, Header)
	}
	for _, inst := range s {
		fmt.Fprintln(bw, inst.Line(opts))
	}
	return bw.Flush()
}
