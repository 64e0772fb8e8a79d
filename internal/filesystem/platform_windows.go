//go:build windows

package filesystem

import (
	"os"
	"syscall"
	"time"
)

// fileTimes returns access and change times (Windows)
func fileTimes(info os.FileInfo) (atime, ctime time.Time) {
	stat, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return info.ModTime(), info.ModTime()
	}
	// On Windows, use creation time as change time
	return time.Unix(0, stat.LastAccessTime.Nanoseconds()), time.Unix(0, stat.CreationTime.Nanoseconds())
}
