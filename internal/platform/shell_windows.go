//go:build windows

package platform

import (
	"unsafe"

	"golang.org/x/sys/windows"

	vitalerrors "github.com/tyemirov/winvitals/internal/errors"
)

const (
	shellLibraryNameConstant             = "shell32.dll"
	userLibraryNameConstant              = "user32.dll"
	emptyRecycleBinProcedureConstant     = "SHEmptyRecycleBinW"
	sendMessageTimeoutProcedureConstant  = "SendMessageTimeoutW"
	recycleBinSubjectConstant            = "recycle_bin"
	settingChangeSubjectConstant         = "setting_change"
	environmentSectionConstant           = "Environment"
	recycleNoConfirmationFlagConstant    = 0x00000001
	recycleNoProgressFlagConstant        = 0x00000002
	recycleNoSoundFlagConstant           = 0x00000004
	broadcastWindowHandleConstant        = 0xffff
	settingChangeMessageConstant         = 0x001A
	abortIfHungFlagConstant              = 0x0002
	broadcastTimeoutMillisecondsConstant = 5000
	successResultConstant                = 0
	recycleBinEmptyResultConstant        = 0x8000FFFF
)

var (
	shellLibrary                = windows.NewLazySystemDLL(shellLibraryNameConstant)
	userLibrary                 = windows.NewLazySystemDLL(userLibraryNameConstant)
	emptyRecycleBinProcedure    = shellLibrary.NewProc(emptyRecycleBinProcedureConstant)
	sendMessageTimeoutProcedure = userLibrary.NewProc(sendMessageTimeoutProcedureConstant)
)

// RecycleBin empties the recycle bins of every drive.
type RecycleBin struct{}

// Empty discards the recycle bin contents without confirmation, progress or sound.
func (RecycleBin) Empty() error {
	if loadError := emptyRecycleBinProcedure.Find(); loadError != nil {
		return vitalerrors.Wrap(vitalerrors.OperationMaintenanceAction, recycleBinSubjectConstant, vitalerrors.ErrUnavailable, loadError)
	}
	flags := uintptr(recycleNoConfirmationFlagConstant | recycleNoProgressFlagConstant | recycleNoSoundFlagConstant)
	result, _, _ := emptyRecycleBinProcedure.Call(0, 0, flags)
	if uint32(result) == successResultConstant || uint32(result) == recycleBinEmptyResultConstant {
		return nil
	}
	return vitalerrors.Wrap(vitalerrors.OperationMaintenanceAction, recycleBinSubjectConstant, vitalerrors.ErrIOFailure, windows.Errno(result))
}

// broadcastEnvironmentChange notifies top-level windows that the persisted environment changed.
func broadcastEnvironmentChange() error {
	if loadError := sendMessageTimeoutProcedure.Find(); loadError != nil {
		return vitalerrors.Wrap(vitalerrors.OperationSearchPathUpdate, settingChangeSubjectConstant, vitalerrors.ErrUnavailable, loadError)
	}
	section, conversionError := windows.UTF16PtrFromString(environmentSectionConstant)
	if conversionError != nil {
		return vitalerrors.Wrap(vitalerrors.OperationSearchPathUpdate, settingChangeSubjectConstant, vitalerrors.ErrIOFailure, conversionError)
	}
	var delivery uintptr
	result, _, callError := sendMessageTimeoutProcedure.Call(
		broadcastWindowHandleConstant,
		settingChangeMessageConstant,
		0,
		uintptr(unsafe.Pointer(section)),
		abortIfHungFlagConstant,
		broadcastTimeoutMillisecondsConstant,
		uintptr(unsafe.Pointer(&delivery)),
	)
	if result == 0 {
		return vitalerrors.Wrap(vitalerrors.OperationSearchPathUpdate, settingChangeSubjectConstant, vitalerrors.ErrIOFailure, callError)
	}
	return nil
}
