package decoder

// next reads a byte that the current instruction requires.
func next(c *Cursor) (byte, error) {
	b, err := c.Next()
	if err != nil {
		return 0, ErrTruncated
	}
	return b, nil
}

// readWord reads a little-endian 16-bit value.
func readWord(c *Cursor) (uint16, error) {
	lo, err := next(c)
	if err != nil {
		return 0, err
	}
	hi, err := next(c)
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}

// readImmediate reads a byte or word immediate. With signExtend set a word
// immediate is encoded as a single byte and widened by its sign bit.
func readImmediate(c *Cursor, w Width, signExtend bool) (Immediate, error) {
	if w == Byte || signExtend {
		b, err := next(c)
		if err != nil {
			return Immediate{}, err
		}
		return Immediate{Value: int16(int8(b)), Width: w}, nil
	}

	v, err := readWord(c)
	if err != nil {
		return Immediate{}, err
	}
	return Immediate{Value: int16(v), Width: Word}, nil
}
