package edm

// HeaderEnd locates the boundary between the ASCII header and the binary
// body: the first newline whose following byte is not '$'. The returned
// offset is the position of that newline, so buf[:offset] is the header
// region. Returns ErrNoHeaderTerminator when no such transition exists.
func HeaderEnd(buf []byte) (int, error) {
	for i := 0; i+1 < len(buf); i++ {
		if buf[i] == '\n' && buf[i+1] != lineStart {
			return i, nil
		}
	}
	return 0, ErrNoHeaderTerminator
}
