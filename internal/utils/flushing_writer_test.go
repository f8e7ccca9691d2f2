package utils_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/winvitals/internal/utils"
)

type recordingFlushTarget struct {
	bytes.Buffer
	flushError error
	flushCount int
}

func (target *recordingFlushTarget) Flush() error {
	target.flushCount++
	return target.flushError
}

func TestFlushingWriterFlushesAfterEveryReportWrite(testInstance *testing.T) {
	target := &recordingFlushTarget{}
	writer := utils.NewFlushingWriter(target)

	for _, line := range []string{"-- inventory --\n", "ComputerInfo: ok\n"} {
		bytesWritten, writeError := io.WriteString(writer, line)
		require.NoError(testInstance, writeError)
		require.Equal(testInstance, len(line), bytesWritten)
	}

	require.Equal(testInstance, 2, target.flushCount)
	require.Equal(testInstance, "-- inventory --\nComputerInfo: ok\n", target.String())
}

func TestFlushingWriterReportsFlushFailure(testInstance *testing.T) {
	flushFailure := errors.New("pipe closed")
	target := &recordingFlushTarget{flushError: flushFailure}

	bytesWritten, writeError := utils.NewFlushingWriter(target).Write([]byte("report"))
	require.ErrorIs(testInstance, writeError, flushFailure)
	require.Equal(testInstance, 6, bytesWritten)
	require.Equal(testInstance, "report", target.String())
}

func TestFlushingWriterPassesThroughPlainWriters(testInstance *testing.T) {
	var buffer bytes.Buffer
	writer := utils.NewFlushingWriter(&buffer)
	require.Same(testInstance, &buffer, writer)

	require.Equal(testInstance, io.Discard, utils.NewFlushingWriter(nil))
}
