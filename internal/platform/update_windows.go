//go:build windows

package platform

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"

	vitalerrors "github.com/tyemirov/winvitals/internal/errors"
)

const (
	updateSessionProgramIDConstant     = "Microsoft.Update.Session"
	updateCollectionProgramIDConstant  = "Microsoft.Update.UpdateColl"
	pendingUpdateCriteriaConstant      = "IsInstalled=0 and IsHidden=0"
	windowsUpdateSubjectConstant       = "windows_update"
	alreadyInitializedCodeConstant     = 0x00000001
	installSucceededCodeConstant       = 2
	installSucceededWithErrorsConstant = 3
	installResultMessageConstant       = "update installation finished with result code %d"
)

// UpdateAgent queries and installs pending updates through the Windows Update Agent.
type UpdateAgent struct{}

// PendingUpdates lists applicable updates that are neither installed nor hidden.
func (UpdateAgent) PendingUpdates(executionContext context.Context) ([]PendingUpdate, error) {
	var pending []PendingUpdate
	sessionError := withUpdateSession(func(scope *dispatchScope, session *ole.IDispatch) error {
		updates, searchError := searchPendingUpdates(scope, session)
		if searchError != nil {
			return searchError
		}
		described, describeError := describeUpdates(scope, updates)
		pending = described
		return describeError
	})
	if sessionError != nil {
		return nil, sessionError
	}
	return pending, nil
}

// InstallPendingUpdates downloads and installs every pending update.
func (UpdateAgent) InstallPendingUpdates(executionContext context.Context) (UpdateInstallation, error) {
	installation := UpdateInstallation{Updates: []PendingUpdate{}}
	sessionError := withUpdateSession(func(scope *dispatchScope, session *ole.IDispatch) error {
		updates, searchError := searchPendingUpdates(scope, session)
		if searchError != nil {
			return searchError
		}
		described, describeError := describeUpdates(scope, updates)
		if describeError != nil {
			return describeError
		}
		installation.Updates = described
		if len(described) == 0 {
			return nil
		}

		collection, collectionError := scope.create(updateCollectionProgramIDConstant)
		if collectionError != nil {
			return collectionError
		}
		for index := range described {
			item, itemError := scope.property(updates, "Item", index)
			if itemError != nil {
				return itemError
			}
			if accepted, _ := scope.boolProperty(item, "EulaAccepted"); !accepted {
				if _, acceptError := oleutil.CallMethod(item, "AcceptEula"); acceptError != nil {
					return acceptError
				}
			}
			if _, addError := oleutil.CallMethod(collection, "Add", item); addError != nil {
				return addError
			}
		}

		downloader, downloaderError := scope.call(session, "CreateUpdateDownloader")
		if downloaderError != nil {
			return downloaderError
		}
		if _, assignError := oleutil.PutProperty(downloader, "Updates", collection); assignError != nil {
			return assignError
		}
		if _, downloadError := oleutil.CallMethod(downloader, "Download"); downloadError != nil {
			return downloadError
		}

		installer, installerError := scope.call(session, "CreateUpdateInstaller")
		if installerError != nil {
			return installerError
		}
		if _, assignError := oleutil.PutProperty(installer, "Updates", collection); assignError != nil {
			return assignError
		}
		result, installError := scope.call(installer, "Install")
		if installError != nil {
			return installError
		}
		resultCode, codeError := scope.intProperty(result, "ResultCode")
		if codeError != nil {
			return codeError
		}
		installation.ResultCode = resultCode
		installation.RebootRequired, _ = scope.boolProperty(result, "RebootRequired")
		if resultCode != installSucceededCodeConstant && resultCode != installSucceededWithErrorsConstant {
			return fmt.Errorf(installResultMessageConstant, resultCode)
		}
		return nil
	})
	if sessionError != nil {
		return installation, sessionError
	}
	return installation, nil
}

func withUpdateSession(work func(scope *dispatchScope, session *ole.IDispatch) error) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if initializationError := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); initializationError != nil {
		var oleError *ole.OleError
		if !errors.As(initializationError, &oleError) || (oleError.Code() != ole.S_OK && oleError.Code() != alreadyInitializedCodeConstant) {
			return vitalerrors.Wrap(vitalerrors.OperationInventoryQuery, windowsUpdateSubjectConstant, vitalerrors.ErrUnavailable, initializationError)
		}
	}
	defer ole.CoUninitialize()

	scope := &dispatchScope{}
	defer scope.release()

	session, sessionError := scope.create(updateSessionProgramIDConstant)
	if sessionError != nil {
		return vitalerrors.Wrap(vitalerrors.OperationInventoryQuery, windowsUpdateSubjectConstant, vitalerrors.ErrUnavailable, sessionError)
	}
	if workError := work(scope, session); workError != nil {
		return vitalerrors.Wrap(vitalerrors.OperationInventoryQuery, windowsUpdateSubjectConstant, vitalerrors.ErrIOFailure, workError)
	}
	return nil
}

func searchPendingUpdates(scope *dispatchScope, session *ole.IDispatch) (*ole.IDispatch, error) {
	searcher, searcherError := scope.call(session, "CreateUpdateSearcher")
	if searcherError != nil {
		return nil, searcherError
	}
	result, searchError := scope.call(searcher, "Search", pendingUpdateCriteriaConstant)
	if searchError != nil {
		return nil, searchError
	}
	return scope.property(result, "Updates")
}

func describeUpdates(scope *dispatchScope, updates *ole.IDispatch) ([]PendingUpdate, error) {
	count, countError := scope.intProperty(updates, "Count")
	if countError != nil {
		return nil, countError
	}
	described := make([]PendingUpdate, 0, count)
	for index := 0; index < count; index++ {
		item, itemError := scope.property(updates, "Item", index)
		if itemError != nil {
			return nil, itemError
		}
		update := PendingUpdate{}
		update.Title, _ = scope.stringProperty(item, "Title")
		update.IsDownloaded, _ = scope.boolProperty(item, "IsDownloaded")
		update.RebootRequired, _ = scope.boolProperty(item, "RebootRequired")
		if identity, identityError := scope.property(item, "Identity"); identityError == nil {
			update.Identifier, _ = scope.stringProperty(identity, "UpdateID")
		}
		if articles, articlesError := scope.property(item, "KBArticleIDs"); articlesError == nil {
			articleCount, _ := scope.intProperty(articles, "Count")
			for articleIndex := 0; articleIndex < articleCount; articleIndex++ {
				if article, articleError := scope.stringProperty(articles, "Item", articleIndex); articleError == nil {
					update.KnowledgeBase = append(update.KnowledgeBase, "KB"+article)
				}
			}
		}
		described = append(described, update)
	}
	return described, nil
}

// dispatchScope releases every COM object acquired during one session.
type dispatchScope struct {
	acquired []*ole.IDispatch
}

func (scope *dispatchScope) track(dispatch *ole.IDispatch) *ole.IDispatch {
	scope.acquired = append(scope.acquired, dispatch)
	return dispatch
}

func (scope *dispatchScope) create(programID string) (*ole.IDispatch, error) {
	unknown, creationError := oleutil.CreateObject(programID)
	if creationError != nil {
		return nil, creationError
	}
	defer unknown.Release()
	dispatch, queryError := unknown.QueryInterface(ole.IID_IDispatch)
	if queryError != nil {
		return nil, queryError
	}
	return scope.track(dispatch), nil
}

func (scope *dispatchScope) call(target *ole.IDispatch, method string, arguments ...interface{}) (*ole.IDispatch, error) {
	variant, callError := oleutil.CallMethod(target, method, arguments...)
	if callError != nil {
		return nil, callError
	}
	return scope.track(variant.ToIDispatch()), nil
}

func (scope *dispatchScope) property(target *ole.IDispatch, name string, arguments ...interface{}) (*ole.IDispatch, error) {
	variant, propertyError := oleutil.GetProperty(target, name, arguments...)
	if propertyError != nil {
		return nil, propertyError
	}
	return scope.track(variant.ToIDispatch()), nil
}

func (scope *dispatchScope) stringProperty(target *ole.IDispatch, name string, arguments ...interface{}) (string, error) {
	variant, propertyError := oleutil.GetProperty(target, name, arguments...)
	if propertyError != nil {
		return "", propertyError
	}
	defer variant.Clear()
	return variant.ToString(), nil
}

func (scope *dispatchScope) boolProperty(target *ole.IDispatch, name string) (bool, error) {
	variant, propertyError := oleutil.GetProperty(target, name)
	if propertyError != nil {
		return false, propertyError
	}
	defer variant.Clear()
	value, isBool := variant.Value().(bool)
	return isBool && value, nil
}

func (scope *dispatchScope) intProperty(target *ole.IDispatch, name string) (int, error) {
	variant, propertyError := oleutil.GetProperty(target, name)
	if propertyError != nil {
		return 0, propertyError
	}
	defer variant.Clear()
	return int(variant.Val), nil
}

func (scope *dispatchScope) release() {
	for index := len(scope.acquired) - 1; index >= 0; index-- {
		if scope.acquired[index] != nil {
			scope.acquired[index].Release()
		}
	}
	scope.acquired = nil
}
