package source

import (
	"os"
	"syscall"
	"time"
)

// createTime extracts the inode change time as the closest available
// proxy for creation time; falls back to the modification time when
// the platform stat shape is unavailable.
func createTime(info os.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
	}
	return info.ModTime()
}
