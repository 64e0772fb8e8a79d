//go:build !linux && !darwin && !windows

package filesystem

import (
	"os"
	"time"
)

// fileTimes falls back to the modification time where stat fields differ
func fileTimes(info os.FileInfo) (atime, ctime time.Time) {
	return info.ModTime(), info.ModTime()
}
