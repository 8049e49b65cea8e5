package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/tagdrop/internal/errors"
)

// seedExtensions are the accepted seed file extensions.
var seedExtensions = map[string]bool{".yaml": true, ".yml": true}

// ValidateSeedPath checks a seed file path before it is opened:
// 1. Path traversal (.. sequences)
// 2. Extension (.yaml or .yml)
// 3. The file exists
// 4. The file is not a symlink
func ValidateSeedPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.NewInvalidRequest("path is required")
	}

	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if !seedExtensions[strings.ToLower(filepath.Ext(cleaned))] {
		return errors.NewInvalidRequest("path must have .yaml or .yml extension")
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	info, err := os.Lstat(absPath)
	if os.IsNotExist(err) {
		return errors.NewNotFound("file", path)
	}
	if err != nil {
		return errors.NewInternal(err)
	}
	// O_NOFOLLOW would reject at open time too; rejecting here gives a clearer error.
	if info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("path must not be a symlink")
	}
	if info.IsDir() {
		return errors.NewInvalidRequest("path must be a file")
	}

	return nil
}

// containsTraversal checks if path contains ".." directory traversal.
func containsTraversal(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	// Also check for forward slashes on all platforms (e.g., user input)
	if filepath.Separator != '/' {
		for _, part := range strings.Split(path, "/") {
			if part == ".." {
				return true
			}
		}
	}
	return false
}
