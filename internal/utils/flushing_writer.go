package utils

import "io"

type flusher interface {
	Flush() error
}

type flushingWriter struct {
	target  io.Writer
	flusher flusher
}

// NewFlushingWriter wraps target so that every write is followed by a flush when target supports it.
func NewFlushingWriter(target io.Writer) io.Writer {
	if target == nil {
		return io.Discard
	}
	flushTarget, flushable := target.(flusher)
	if !flushable {
		return target
	}
	return &flushingWriter{target: target, flusher: flushTarget}
}

func (writer *flushingWriter) Write(data []byte) (int, error) {
	bytesWritten, writeError := writer.target.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}
	return bytesWritten, writer.flusher.Flush()
}
