// Package cpu holds the 8086 register file and a line-oriented
// re-interpreter that applies the mov lines of a listing to it.
package cpu

import (
	"fmt"
	"io"
	"strings"
)

// Reg indexes the word registers.
type Reg uint8

const (
	AX Reg = iota
	BX
	CX
	DX
	SP
	BP
	SI
	DI
	numRegs
)

var regNames = [numRegs]string{"ax", "bx", "cx", "dx", "sp", "bp", "si", "di"}

func (r Reg) String() string {
	if r < numRegs {
		return regNames[r]
	}
	return fmt.Sprintf("reg(%d)", uint8(r))
}

// ParseReg resolves a register name as it appears in a listing. A trailing
// operand separator is ignored, so both "ax" and "ax," are accepted.
func ParseReg(s string) (Reg, bool) {
	s = strings.TrimSuffix(s, ",")
	for i, name := range regNames {
		if name == s {
			return Reg(i), true
		}
	}
	return 0, false
}

// Flag indexes the status flags.
type Flag uint8

const (
	ZF Flag = iota
	SF
	numFlags
)

// CPU is the register file. The zero value is a reset machine.
type CPU struct {
	R [numRegs]uint16
	F [numFlags]bool
}

// Set assigns v to r and reports the change.
func (c *CPU) Set(r Reg, v uint16) Change {
	ch := Change{Reg: r, Old: c.R[r], New: v}
	c.R[r] = v
	return ch
}

// Change records a single register write.
type Change struct {
	Reg      Reg
	Old, New uint16
}

func (ch Change) String() string {
	return fmt.Sprintf("%s:0x%x->0x%x", ch.Reg, ch.Old, ch.New)
}

func boolBit(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Dump prints the register file.
func (c *CPU) Dump(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"AX=%04X  BX=%04X  CX=%04X  DX=%04X\n"+
			"SP=%04X  BP=%04X  SI=%04X  DI=%04X\n"+
			"ZF=%d  SF=%d\n",
		c.R[AX], c.R[BX], c.R[CX], c.R[DX],
		c.R[SP], c.R[BP], c.R[SI], c.R[DI],
		boolBit(c.F[ZF]), boolBit(c.F[SF]),
	)
	return err
}
