package runtime

import (
	"bytes"
	"io"
)

// Context carries the I/O environment threaded through evaluation.
type Context interface {
	Output() io.Writer
}

// WriterContext adapts a plain io.Writer into a Context.
type WriterContext struct {
	Out io.Writer
}

func (c *WriterContext) Output() io.Writer { return c.Out }

// DummyContext captures everything printed under it into a buffer. It backs
// str(): an object is printed into the buffer and the buffer's contents
// become the resulting String.
type DummyContext struct {
	buf bytes.Buffer
}

func (c *DummyContext) Output() io.Writer { return &c.buf }

func (c *DummyContext) String() string { return c.buf.String() }
