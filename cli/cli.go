package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/ddpaper/cli/cmd"
	"github.com/ardnew/ddpaper/pkg"
)

// CLI is the top-level command-line interface for ddpaper.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Data  dataConfig  `embed:"" group:"data"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit" short:"V"`

	Gen   cmd.Gen   `cmd:"" default:"withargs" help:"Write the macro definitions used by a draft"`
	Keys  cmd.Keys  `cmd:""                    help:"List the placeholder keys of a draft"`
	Query cmd.Query `cmd:""                    help:"Resolve keys and print their values"`
	Repl  cmd.Repl  `cmd:""                    help:"Resolve keys interactively"`
	Init  cmd.Init  `cmd:""                    help:"Initialize configuration file"`
}

// Run executes the ddpaper CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := makeDirs()
	if err != nil {
		return err
	}

	configFilePath := configFile()

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cacheDir(),
		"version":            pkg.Version,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Data.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Apply logger flags before parsing so that they take effect regardless
	// of their position on the command line.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Data.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve, configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithLoader(ctx, cli.Data.source(cacheDir()).Load)

	defer cli.Log.start(ctx)()

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
