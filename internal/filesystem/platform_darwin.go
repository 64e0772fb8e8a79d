//go:build darwin

package filesystem

import (
	"os"
	"syscall"
	"time"
)

// fileTimes returns access and change times (macOS)
func fileTimes(info os.FileInfo) (atime, ctime time.Time) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime(), info.ModTime()
	}
	return time.Unix(stat.Atimespec.Sec, stat.Atimespec.Nsec), time.Unix(stat.Ctimespec.Sec, stat.Ctimespec.Nsec)
}
