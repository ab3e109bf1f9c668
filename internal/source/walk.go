package source

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/bol-intake/constants"
)

// WalkDir lists the intake documents under root, sorted, optionally skipping hidden entries.
func WalkDir(root string, skipHidden bool) ([]string, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	var out []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if skipHidden && p != root && isHidden(p) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := constants.AllowedExtensions[constants.NormalizeExt(filepath.Ext(p))]; ok {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk: %w", err)
	}
	sort.Strings(out)
	return out, nil
}

func isHidden(p string) bool {
	return strings.HasPrefix(filepath.Base(p), ".")
}
