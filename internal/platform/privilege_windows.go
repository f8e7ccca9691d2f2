//go:build windows

package platform

import (
	"golang.org/x/sys/windows"
)

const administratorsSubAuthorityCountConstant = 2

// ElevationChecker reports whether the process token is a member of the local Administrators group.
type ElevationChecker struct{}

// IsElevated checks the process token for the built-in Administrators SID.
func (ElevationChecker) IsElevated() (bool, error) {
	var administratorsSID *windows.SID
	allocationError := windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		administratorsSubAuthorityCountConstant,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&administratorsSID,
	)
	if allocationError != nil {
		return false, allocationError
	}
	defer windows.FreeSid(administratorsSID)

	processToken := windows.Token(0)
	return processToken.IsMember(administratorsSID)
}
