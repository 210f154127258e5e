package shellcore

import (
	"os"

	"golang.org/x/sys/unix"
)

// stageHeredoc writes body to a temporary file, unlinks it immediately,
// and returns the still-open handle rewound to offset 0. The caller
// passes the returned file's fd to the child as stdin; when the child
// exits and the last reference is closed, the kernel reclaims the space.
//
// This mirrors original_source/src/process.rs's handle_heredoc, which
// creates a scratch file, writes the heredoc body, and reopens it for
// reading before wiring it to the child's stdin. Using an unlinked
// os.CreateTemp file instead of a named scratch path avoids leaving a
// visible temp file behind if the shell is killed mid-command.
func stageHeredoc(dir, body string) (*os.File, error) {
	f, err := os.CreateTemp(dir, "shellcore-heredoc-*")
	if err != nil {
		return nil, err
	}
	name := f.Name()
	if _, err := f.WriteString(body); err != nil {
		f.Close()
		unix.Unlink(name)
		return nil, err
	}
	if err := unix.Unlink(name); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.Seek(0, 0); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}
