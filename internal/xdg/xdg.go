package xdg

import (
	"os"
	"path/filepath"
)

// XDGDirs provides access to XDG Base Directory Specification compliant paths
type XDGDirs struct {
	cacheHome  string
	runtimeDir string
}

// NewXDGDirs creates a new XDGDirs instance with proper defaults according to XDG spec
func NewXDGDirs() *XDGDirs {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv("HOME")
		if homeDir == "" {
			homeDir = os.TempDir()
		}
	}

	xdg := &XDGDirs{}

	xdg.cacheHome = os.Getenv("XDG_CACHE_HOME")
	if xdg.cacheHome == "" {
		xdg.cacheHome = filepath.Join(homeDir, ".cache")
	}

	xdg.runtimeDir = os.Getenv("XDG_RUNTIME_DIR")
	if xdg.runtimeDir == "" {
		xdg.runtimeDir = filepath.Join(os.TempDir(), "grader-runtime-"+os.Getenv("USER"))
	}

	return xdg
}

// CacheHome returns the base directory for user-specific cached data
func (x *XDGDirs) CacheHome() string {
	return x.cacheHome
}

// RuntimeDir returns the base directory for user-specific runtime files
func (x *XDGDirs) RuntimeDir() string {
	return x.runtimeDir
}

// AppCacheDir returns the application-specific cache directory
func (x *XDGDirs) AppCacheDir(appName string) string {
	return filepath.Join(x.cacheHome, appName)
}

// AppRuntimeDir returns the application-specific runtime directory
func (x *XDGDirs) AppRuntimeDir(appName string) string {
	return filepath.Join(x.runtimeDir, appName)
}

// EnsureDir creates the directory with appropriate permissions if it doesn't exist
func (x *XDGDirs) EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// EnsureRuntimeDir creates the runtime directory with secure permissions (0700)
func (x *XDGDirs) EnsureRuntimeDir(path string) error {
	return os.MkdirAll(path, 0700)
}
