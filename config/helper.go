package config

import (
	"fmt"
	"os"
	"path"

	"github.com/mitchellh/go-homedir"
)

// mustGetConfigHomeDir returns the full path to the home directory that stores all config files.
// It falls back to the working directory when no home directory can be found.
func mustGetConfigHomeDir() string {
	if snowXferHomeDir == "" {
		home, err := homedir.Dir()
		if err != nil {
			home = "."
		}
		snowXferHomeDir = path.Join(home, MainDir)
	}
	return snowXferHomeDir
}

// ExpandPath resolves a leading "~" in p to the user's home directory.
func ExpandPath(p string) (string, error) {
	return homedir.Expand(p)
}

// makeDir will make the given directory if it does not already exist.
// If it exists then return nil.
// An error is returned if there is a problem creating the dir.
func makeDir(dir string) error {
	_, err := os.Stat(dir)
	if os.IsNotExist(err) { // if it doesn't exist...
		if err = os.MkdirAll(dir, 0755); err != nil { // if the dir was NOT created...
			return fmt.Errorf("error creating directory %v", dir)
		}
	} else if err != nil { // if there was an error getting status...
		return err
	}
	return nil
}
