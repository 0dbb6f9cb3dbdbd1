package cli

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ardnew/ddpaper/pkg"
)

// Layout of the per-user directories:
//
//	<config>/ddpaper/config       YAML defaults for command-line flags
//	<config>/ddpaper/config.json  JSON defaults, read before the YAML file
//	<cache>/ddpaper/data/         gob caches of assembled data stores
//	<cache>/ddpaper/pprof/        profiles (pprof builds only)
//	<cache>/ddpaper/history.utf8  repl input history
const (
	configName   = "config"
	dataCacheSub = "data"
)

var dirMode os.FileMode = 0o700

var debugBinary = regexp.MustCompile(`^__debug_bin\d+$`)

// appName derives the directory name from an executable path. Debugger
// builds map to the package name and leading dots are dropped.
func appName(exe string) string {
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	if debugBinary.MatchString(name) {
		return pkg.Name
	}

	if name = strings.TrimLeft(name, "."); name == "" {
		return pkg.Name
	}

	return name
}

var basePrefix = sync.OnceValue(func() string {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}

	return appName(exe)
})

// userDir joins name onto the directory reported by base. If base fails,
// the hidden directory under $HOME is used, then the working directory.
func userDir(base func() (string, error), hidden, name string) string {
	if dir, err := base(); err == nil {
		return filepath.Join(dir, name)
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, hidden, name)
	}

	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, name)
	}

	return name
}

var configDir = sync.OnceValue(func() string {
	return userDir(os.UserConfigDir, ".config", basePrefix())
})

var cacheDir = sync.OnceValue(func() string {
	return userDir(os.UserCacheDir, ".cache", basePrefix())
})

// configFile is the YAML configuration file. The JSON variant appends
// ".json" to it.
func configFile() string { return filepath.Join(configDir(), configName) }

// dataCacheDir holds the store caches below root.
func dataCacheDir(root string) string { return filepath.Join(root, dataCacheSub) }

func makeDirs() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, dirMode); err != nil {
			return err
		}
	}

	return nil
}
