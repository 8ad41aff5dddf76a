package utils

import (
	"io"
	"sync"
)

type flusher interface {
	Flush() error
}

// FlushingWriter serializes writes and flushes buffered destinations after each one,
// so report lines appear as soon as they are rendered.
type FlushingWriter struct {
	mutex  sync.Mutex
	writer io.Writer
}

// NewFlushingWriter wraps writer unless it is nil or already wrapped.
func NewFlushingWriter(writer io.Writer) io.Writer {
	switch writer.(type) {
	case nil:
		return nil
	case *FlushingWriter:
		return writer
	default:
		return &FlushingWriter{writer: writer}
	}
}

// Write delegates to the wrapped writer, then flushes it when it supports flushing.
func (flushingWriter *FlushingWriter) Write(data []byte) (int, error) {
	if flushingWriter == nil || flushingWriter.writer == nil {
		return 0, nil
	}

	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	bytesWritten, writeError := flushingWriter.writer.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}
	if flushableWriter, canFlush := flushingWriter.writer.(flusher); canFlush {
		return bytesWritten, flushableWriter.Flush()
	}
	return bytesWritten, nil
}
