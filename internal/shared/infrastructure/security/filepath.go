// Package security validates operator-supplied file locations before the
// ledger opens them.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// dangerousChars are shell metacharacters never expected in a database path.
var dangerousChars = []string{";", "&", "|", "$", "`", "(", ")", "{", "}", "<", ">", "!", "\n", "\r"}

// ValidateFilePath cleans path, makes it absolute and resolves symlinks
// when the file already exists.
func ValidateFilePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("file path cannot be empty")
	}
	for _, char := range dangerousChars {
		if strings.Contains(path, char) {
			return "", fmt.Errorf("file path contains forbidden character %q: %s", char, path)
		}
	}

	cleanPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cleanPath, nil
		}
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}
	return resolved, nil
}

// ValidateFilePathInDir is ValidateFilePath plus a check that the result
// stays under baseDir.
func ValidateFilePathInDir(path, baseDir string) (string, error) {
	if baseDir == "" {
		return "", fmt.Errorf("base directory cannot be empty")
	}
	cleanPath, err := ValidateFilePath(path)
	if err != nil {
		return "", err
	}
	base, err := ValidateFilePath(baseDir)
	if err != nil {
		return "", err
	}
	if cleanPath != base && !strings.HasPrefix(cleanPath, base+string(filepath.Separator)) {
		return "", fmt.Errorf("file path escapes base directory: %s is not within %s", path, baseDir)
	}
	return cleanPath, nil
}
