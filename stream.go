package smtpwire

import (
	"bytes"
	"io"
)

// writeChunkSize is the unit in which payloads move to the transport and
// through the outbound splitter.
const writeChunkSize = 4096

// payload is the uniform pushable byte source a command payload is
// normalized into: fixed in-memory bytes become a single-shot producer, an
// already-streaming source passes through unchanged.
type payload struct {
	src io.Reader
}

func bytesPayload(data []byte) payload {
	return payload{src: bytes.NewReader(data)}
}

func readerPayload(r io.Reader) payload {
	return payload{src: r}
}

// stream pushes the payload through fn chunk by chunk until end-of-stream.
// Chunks reach fn in source order; fn is responsible for forwarding each
// chunk to both the outbound splitter and the transport so the two paths
// observe identical byte ordering.
func (p payload) stream(fn func(chunk []byte) error) error {
	if p.src == nil {
		return nil
	}
	buf := make([]byte, writeChunkSize)
	for {
		n, err := p.src.Read(buf)
		if n > 0 {
			if ferr := fn(buf[:n]); ferr != nil {
				return ferr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
