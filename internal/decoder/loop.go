package decoder

import (
	"bufio"
	"io"
)

// Decode decodes every instruction in data. On failure it returns the
// instructions decoded before the failing one along with the error.
func Decode(data []byte) ([]Instruction, error) {
	var out []Instruction
	d := New(data)
	for {
		ins, err := d.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, ins)
	}
}

// Disassemble writes one line per decoded instruction to w. Lines written
// before a decode error are kept; the error is returned after flushing them.
func Disassemble(w io.Writer, data []byte) error {
	bw := bufio.NewWriter(w)
	d := New(data)
	for {
		ins, err := d.Next()
		if err == io.EOF {
			return bw.Flush()
		}
		if err != nil {
			if ferr := bw.Flush(); ferr != nil {
				return ferr
			}
			return err
		}
		if _, err := bw.WriteString(Format(ins) + "\n"); err != nil {
			return err
		}
	}
}
