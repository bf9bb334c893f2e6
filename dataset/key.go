package dataset

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// localPath maps an object key to a file below root.
// The key's slash-separated segments become directories.
func localPath(root, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: empty key", ErrInvalidArgument)
	}
	if strings.HasSuffix(key, "/") {
		return "", fmt.Errorf("%w: %s is a directory marker", ErrInvalidArgument, key)
	}
	if path.Clean(key) == "." {
		return "", fmt.Errorf("%w: %s does not name a file", ErrInvalidArgument, key)
	}
	if path.IsAbs(key) || !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", fmt.Errorf("%w: %s escapes the destination directory", ErrInvalidArgument, key)
	}
	return filepath.Join(root, filepath.FromSlash(key)), nil
}
