package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// StateDirName is the per-repository directory holding apiscan state
	StateDirName = ".apiscan"
	// ConfigFileName is the config file inside StateDirName
	ConfigFileName = "config.json"
	// HistoryDBName is the run history database inside StateDirName
	HistoryDBName = "history.db"
	// LogFileName is the optional log file under StateDirName/logs
	LogFileName = "apiscan.log"
)

// GetStateDir returns <repoRoot>/.apiscan
func GetStateDir(repoRoot string) string {
	return filepath.Join(repoRoot, StateDirName)
}

// GetConfigPath returns <repoRoot>/.apiscan/config.json
func GetConfigPath(repoRoot string) string {
	return filepath.Join(GetStateDir(repoRoot), ConfigFileName)
}

// GetHistoryDBPath returns <repoRoot>/.apiscan/history.db
func GetHistoryDBPath(repoRoot string) string {
	return filepath.Join(GetStateDir(repoRoot), HistoryDBName)
}

// GetLogPath returns <repoRoot>/.apiscan/logs/apiscan.log
func GetLogPath(repoRoot string) string {
	return filepath.Join(GetStateDir(repoRoot), "logs", LogFileName)
}

// EnsureStateDir creates <repoRoot>/.apiscan if needed and returns it.
func EnsureStateDir(repoRoot string) (string, error) {
	dir := GetStateDir(repoRoot)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return dir, nil
}

// AbsClean returns the cleaned absolute form of path, resolved against base
// when path is relative. It does not touch the filesystem.
func AbsClean(base, path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// CanonicalizePath converts an absolute path to a repo-relative canonical path
// - Resolves symlinks to real paths
// - Makes path relative to repo root
// - Converts backslashes to forward slashes
func CanonicalizePath(absolutePath string, repoRoot string) (string, error) {
	resolved, err := filepath.EvalSymlinks(absolutePath)
	if err != nil {
		// If the file doesn't exist yet, use the path as-is
		if os.IsNotExist(err) {
			resolved = absolutePath
		} else {
			return "", err
		}
	}

	repoRootResolved, err := filepath.EvalSymlinks(repoRoot)
	if err != nil {
		if os.IsNotExist(err) {
			repoRootResolved = repoRoot
		} else {
			return "", err
		}
	}

	relativePath, err := filepath.Rel(repoRootResolved, resolved)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(relativePath), nil
}

// DisplayPath renders path relative to repoRoot when it lies inside it, and
// unchanged otherwise.
func DisplayPath(path, repoRoot string) string {
	canonical, err := CanonicalizePath(path, repoRoot)
	if err != nil || strings.HasPrefix(canonical, "..") {
		return filepath.ToSlash(path)
	}
	return canonical
}

// IsWithinRepo checks if a path is within the repository root
func IsWithinRepo(path string, repoRoot string) bool {
	canonical, err := CanonicalizePath(path, repoRoot)
	if err != nil {
		return false
	}
	return !strings.HasPrefix(canonical, "..")
}
