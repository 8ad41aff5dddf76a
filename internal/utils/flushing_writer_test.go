package utils_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/thanks/internal/utils"
)

type countingFlusher struct {
	bytes.Buffer
	flushCount int
	flushError error
}

func (flusher *countingFlusher) Flush() error {
	flusher.flushCount++
	return flusher.flushError
}

func TestFlushingWriterFlushesAfterEachWrite(testInstance *testing.T) {
	flusher := &countingFlusher{}
	writer := utils.NewFlushingWriter(flusher)

	_, firstWriteError := writer.Write([]byte("Stars sent to:\n"))
	require.NoError(testInstance, firstWriteError)
	_, secondWriteError := writer.Write([]byte(" ★ acme/alpha - https://github.com/acme/alpha\n"))
	require.NoError(testInstance, secondWriteError)

	require.Equal(testInstance, 2, flusher.flushCount)
	require.Equal(testInstance, "Stars sent to:\n ★ acme/alpha - https://github.com/acme/alpha\n", flusher.String())
	require.Same(testInstance, writer, utils.NewFlushingWriter(writer))
}

func TestFlushingWriterReportsFlushError(testInstance *testing.T) {
	flushError := errors.New("closed pipe")
	writer := utils.NewFlushingWriter(&countingFlusher{flushError: flushError})

	bytesWritten, writeError := writer.Write([]byte("line\n"))
	require.ErrorIs(testInstance, writeError, flushError)
	require.Equal(testInstance, 5, bytesWritten)
}

func TestFlushingWriterNilWriter(testInstance *testing.T) {
	require.Nil(testInstance, utils.NewFlushingWriter(nil))
}
