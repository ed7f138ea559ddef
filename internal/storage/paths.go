package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	sessionFileName = "session.db"
	tasksFileName   = "tasks.db"
)

// Paths lists the files the application keeps on disk.
type Paths struct {
	Settings string
	Session  string
	Tasks    string
}

// ResolvePaths returns file locations under the user config directory.
func ResolvePaths(appName string) (Paths, error) {
	dir, err := appDir(appName)
	if err != nil {
		return Paths{}, err
	}
	return PathsIn(dir), nil
}

// PathsIn returns file locations under dir.
func PathsIn(dir string) Paths {
	return Paths{
		Settings: filepath.Join(dir, settingsFileName),
		Session:  filepath.Join(dir, sessionFileName),
		Tasks:    filepath.Join(dir, tasksFileName),
	}
}

// SettingsPath returns the preferences file location.
func SettingsPath(appName string) (string, error) {
	dir, err := appDir(appName)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, settingsFileName), nil
}

func appDir(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName), nil
}
