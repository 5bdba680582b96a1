package decoder

import "io"

// Cursor reads a machine-code stream one byte at a time.
// It never seeks backwards.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor returns a cursor positioned at the first byte of data.
// The slice is borrowed, not copied.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Next returns the byte under the cursor and advances past it.
// It returns io.EOF once every byte has been consumed.
func (c *Cursor) Next() (byte, error) {
	if c.pos >= len(c.data) {
		return 0, io.EOF
	}
	b := c.data[c.pos]
	c.pos++
	return b, nil
}

// Offset is the number of bytes consumed so far.
func (c *Cursor) Offset() int {
	return c.pos
}

// Done reports whether the stream is exhausted.
func (c *Cursor) Done() bool {
	return c.pos >= len(c.data)
}

// Since returns the bytes consumed from start up to the current position.
func (c *Cursor) Since(start int) []byte {
	return c.data[start:c.pos]
}
