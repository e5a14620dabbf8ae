//go:build !windows

package appdirs

import (
	"os"
	"syscall"
)

func groupOrWorldAccessible(mode os.FileMode) bool {
	return mode&0o077 != 0
}

func ownedByCurrentUser(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return false
	}
	return stat.Uid == uint32(os.Getuid())
}
