package x64

type buffer struct {
	b  []byte
	i  int
	sz int
}

func newBuffer(buf []byte) buffer {
	buf = buf[:cap(buf)]
	return buffer{b: buf, i: 0, sz: len(buf)}
}

func (b *buffer) extend(length int) {
	if len(b.b)-b.i >= length {
		return
	}
	n := len(b.b) * 2
	for n-b.i < length {
		n = n*2 + length
	}
	bb := make([]byte, n)
	copy(bb, b.b[:b.i])
	b.b = bb
}

func (b *buffer) Len() int    { return b.i }
func (b *buffer) Get() []byte { return b.b[:b.i] }
func (b *buffer) Reset()      { b.ResizeReset(b.sz) }
func (b *buffer) ResizeReset(capacity int) {
	if len(b.b) != capacity {
		b.b = make([]byte, capacity)
	}
	b.i = 0
}

func (b *buffer) Bytes(v []byte) {
	b.extend(len(v))
	copy(b.b[b.i:], v)
	b.i += len(v)
}
