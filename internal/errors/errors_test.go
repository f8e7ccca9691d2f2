package errors_test

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	vitalerrors "github.com/tyemirov/winvitals/internal/errors"
)

const (
	testSubjectConstant          = "SystemFileChecker"
	testDetailMessageConstant    = "access denied"
	testFormattedMessageConstant = "sfc exited with code 2"
)

type detailError struct {
	code int
}

func (detail detailError) Error() string {
	return fmt.Sprintf("detail %d", detail.code)
}

func TestWrapPreservesSentinelAndDetail(testInstance *testing.T) {
	wrapped := vitalerrors.Wrap(vitalerrors.OperationToolInvocation, testSubjectConstant, vitalerrors.ErrToolNonZeroExit, detailError{code: 2})

	require.ErrorIs(testInstance, wrapped, vitalerrors.ErrToolNonZeroExit)

	var detail detailError
	require.True(testInstance, stdErrors.As(wrapped, &detail))
	require.Equal(testInstance, 2, detail.code)

	var operationError vitalerrors.OperationError
	require.True(testInstance, stdErrors.As(wrapped, &operationError))
	require.Equal(testInstance, vitalerrors.OperationToolInvocation, operationError.Operation())
	require.Equal(testInstance, testSubjectConstant, operationError.Subject())
	require.Equal(testInstance, vitalerrors.ErrToolNonZeroExit.Code(), operationError.Code())
	require.Equal(testInstance, "tool.invoke[SystemFileChecker]: tool_non_zero_exit: detail 2", wrapped.Error())
}

func TestWrapMessageFormatsSubject(testInstance *testing.T) {
	testCases := []struct {
		name            string
		subject         string
		message         string
		expectedMessage string
	}{
		{
			name:            "with_subject",
			subject:         testSubjectConstant,
			message:         testFormattedMessageConstant,
			expectedMessage: "task.execute[SystemFileChecker]: sfc exited with code 2",
		},
		{
			name:            "without_subject",
			message:         testDetailMessageConstant,
			expectedMessage: "task.execute: access denied",
		},
		{
			name:            "empty_message_falls_back_to_sentinel",
			subject:         testSubjectConstant,
			expectedMessage: "task.execute[SystemFileChecker]: io_failure",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			wrapped := vitalerrors.WrapMessage(vitalerrors.OperationTaskExecution, testCase.subject, vitalerrors.ErrIOFailure, testCase.message)
			require.ErrorIs(testInstance, wrapped, vitalerrors.ErrIOFailure)
			require.Equal(testInstance, testCase.expectedMessage, wrapped.Error())
			require.Equal(testInstance, vitalerrors.ErrIOFailure.Code(), vitalerrors.CodeOf(wrapped))
		})
	}
}

func TestCodeOfWithoutSentinel(testInstance *testing.T) {
	require.Empty(testInstance, vitalerrors.CodeOf(nil))
	require.Empty(testInstance, vitalerrors.CodeOf(stdErrors.New(testDetailMessageConstant)))
}
