package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

const (
	// DefaultPort is the TCP port the server listens on.
	DefaultPort = 8888
	// ContentDirName is the directory, next to the executable, that is served.
	ContentDirName = "content"
)

// Startup errors returned by Validate.
var (
	ErrContentRootMissing    = errors.New("content root does not exist")
	ErrContentRootNotDir     = errors.New("content root is not a directory")
	ErrContentRootUnreadable = errors.New("content root is not readable")
)

// Config holds the fixed server settings. It is resolved once at startup and
// never modified afterwards.
type Config struct {
	Port        int
	ContentRoot string
}

// Load resolves the content root relative to the running executable.
func Load() (*Config, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return LoadFrom(filepath.Dir(exe))
}

// LoadFrom builds a config whose content root is baseDir/content.
func LoadFrom(baseDir string) (*Config, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve base dir: %w", err)
	}
	return &Config{
		Port:        DefaultPort,
		ContentRoot: filepath.Join(abs, ContentDirName),
	}, nil
}

// Addr returns the listen address on all interfaces.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate checks that the content root exists, is a directory and can be
// listed and read by this process.
func (c *Config) Validate() error {
	info, err := os.Stat(c.ContentRoot)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrContentRootMissing, c.ContentRoot)
	}
	if err != nil {
		return fmt.Errorf("stat content root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrContentRootNotDir, c.ContentRoot)
	}
	if err := unix.Access(c.ContentRoot, unix.R_OK|unix.X_OK); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrContentRootUnreadable, c.ContentRoot, err)
	}
	return nil
}
