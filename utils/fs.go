package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
)

// EnsureDirectory creates path and its missing parents with perm. The
// permissions of an existing directory are reset to perm, except on Windows.
func EnsureDirectory(path string, perm os.FileMode) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(path, perm); err != nil {
			return fmt.Errorf("failed to create dir %s: %w", path, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to access %s: %w", path, err)
	case !info.IsDir():
		return fmt.Errorf("%s exists and is not a directory", path)
	case info.Mode().Perm() != perm && runtime.GOOS != "windows":
		return os.Chmod(path, perm)
	default:
		return nil
	}
}
