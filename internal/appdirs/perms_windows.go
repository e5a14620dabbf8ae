//go:build windows

package appdirs

import "os"

// Windows ACLs are not expressed in mode bits.
func groupOrWorldAccessible(os.FileMode) bool { return false }

func ownedByCurrentUser(os.FileInfo) bool { return false }
