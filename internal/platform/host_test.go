package platform_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/winvitals/internal/platform"
)

func TestHostInspectorSummaryReportsProcessBitness(testInstance *testing.T) {
	summary, summaryError := platform.NewHostInspector().Summary(context.Background())
	require.NoError(testInstance, summaryError)
	require.Equal(testInstance, strconv.IntSize, summary.ProcessBitness)
	require.NotEmpty(testInstance, summary.OperatingSystem)
}
