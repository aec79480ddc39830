package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// SealDirName is the per-repo directory holding seal's config, policy, and journal.
const SealDirName = ".seal"

// SealDir returns the .seal directory path for a repo root.
func SealDir(root string) string {
	return filepath.Join(root, SealDirName)
}

// ConfigPath returns the config file path for a repo root.
func ConfigPath(root string) string {
	return filepath.Join(SealDir(root), "config.json")
}

// PolicyPath returns the policy file path for a repo root.
func PolicyPath(root string) string {
	return filepath.Join(SealDir(root), "policy.yaml")
}

// DBPath returns the run journal path for a repo root.
func DBPath(root string) string {
	return filepath.Join(SealDir(root), "seal.db")
}

// LogPath returns the log file path for a repo root.
func LogPath(root string) string {
	return filepath.Join(SealDir(root), "seal.log")
}

// EnsureSealDir creates the .seal directory if it does not exist.
func EnsureSealDir(root string) error {
	return os.MkdirAll(SealDir(root), 0755)
}

// CanonicalizePath converts an absolute path to a root-relative canonical path
// - Resolves symlinks to real paths
// - Makes path relative to the source root
// - Converts backslashes to forward slashes
// - Returns root-relative path with forward slashes
func CanonicalizePath(absolutePath string, root string) (string, error) {
	// Resolve symlinks
	resolved, err := filepath.EvalSymlinks(absolutePath)
	if err != nil {
		// If the file doesn't exist yet, use the path as-is
		if os.IsNotExist(err) {
			resolved = absolutePath
		} else {
			return "", err
		}
	}

	rootResolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		if os.IsNotExist(err) {
			rootResolved = root
		} else {
			return "", err
		}
	}

	relativePath, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}

	// Convert to forward slashes (platform independent)
	return filepath.ToSlash(relativePath), nil
}

// IsWithinRoot checks if a path is within the source root
func IsWithinRoot(path string, root string) bool {
	canonical, err := CanonicalizePath(path, root)
	if err != nil {
		return false
	}

	// Path is outside the root if it starts with ..
	return !strings.HasPrefix(canonical, "..")
}

// NormalizePath normalizes a path by converting backslashes to forward slashes
// This is useful for paths that are already relative but need normalization
func NormalizePath(path string) string {
	return filepath.ToSlash(path)
}

// JoinRootPath joins a source root with a canonical document path
func JoinRootPath(root string, canonicalPath string) string {
	// Ensure we use forward slashes in the canonical path
	normalizedPath := strings.ReplaceAll(canonicalPath, "\\", "/")
	// Convert to OS-specific path separator for joining
	parts := strings.Split(normalizedPath, "/")
	return filepath.Join(append([]string{root}, parts...)...)
}
