package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MaxLineLength bounds a single listing line, newline excluded.
const MaxLineLength = 128

// ErrLineTooLong is returned when a listing line exceeds MaxLineLength.
var ErrLineTooLong = errors.New("listing line too long")

// Apply interprets one listing line. Only "mov <reg>, <reg|integer>" with
// word registers changes state; every other line is ignored and reported
// with ok set to false.
func (c *CPU) Apply(line string) (ch Change, ok bool, err error) {
	if len(line) > MaxLineLength {
		return Change{}, false, ErrLineTooLong
	}
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}

	fields := strings.Fields(line)
	if len(fields) != 3 || fields[0] != "mov" || !strings.HasSuffix(fields[1], ",") {
		return Change{}, false, nil
	}

	dst, ok := ParseReg(fields[1])
	if !ok {
		return Change{}, false, nil
	}
	if src, ok := ParseReg(fields[2]); ok {
		return c.Set(dst, c.R[src]), true, nil
	}

	v, err := strconv.ParseInt(fields[2], 0, 32)
	if err != nil || v < -0x8000 || v > 0xFFFF {
		// memory operands and out-of-range literals are not simulated
		return Change{}, false, nil
	}
	return c.Set(dst, uint16(v)), true, nil
}

// Simulate applies every line read from r. onChange, if not nil, is called
// for each register write with the 1-based line number.
func (c *CPU) Simulate(r io.Reader, onChange func(line int, ch Change)) error {
	sc := bufio.NewScanner(r)
	// leave room for a "\r\n" terminator; Apply enforces the real limit
	sc.Buffer(make([]byte, 0, MaxLineLength+2), MaxLineLength+2)

	n := 0
	for sc.Scan() {
		n++
		ch, ok, err := c.Apply(strings.TrimSuffix(sc.Text(), "\r"))
		if err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
		if ok && onChange != nil {
			onChange(n, ch)
		}
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return fmt.Errorf("line %d: %w", n+1, ErrLineTooLong)
		}
		return err
	}
	return nil
}
