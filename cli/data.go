package cli

import (
	"github.com/alecthomas/kong"

	"github.com/ardnew/ddpaper/cli/cmd"
	"github.com/ardnew/ddpaper/data"
)

type dataConfig struct {
	Data        string   `default:"${dataDir}" help:"Directory of YAML data files"               placeholder:"DIR"        short:"d" type:"path"`
	Module      []string `help:"Load a subdirectory of the data directory"                        placeholder:"NAME"       sep:"none" short:"m"`
	Assume      []string `help:"Override a value, e.g. 'grb.t0=0'"                                placeholder:"PATH=VALUE" sep:"none" short:"a"`
	Load        []string `help:"Load an extra YAML file as a namespace named by its stem"         placeholder:"FILE"       sep:"none" short:"l" type:"existingfile"`
	WriteCaches bool     `help:"Write the assembled data to the cache for later runs"             short:"w"`
}

func (dataConfig) vars() kong.Vars {
	return kong.Vars{
		"dataDir": data.DefaultDir,
	}
}

func (dataConfig) group() kong.Group {
	var group kong.Group

	group.Key = "data"
	group.Title = "Data options"

	return group
}

// source describes the store selected by the data flags. Caches live in
// their own subdirectory of cacheDir.
func (f dataConfig) source(cacheDir string) cmd.DataSource {
	return cmd.DataSource{
		Dir:        f.Data,
		Modules:    f.Module,
		Files:      f.Load,
		Assume:     f.Assume,
		CacheDir:   dataCacheDir(cacheDir),
		WriteCache: f.WriteCaches,
	}
}
