package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/findash/findash/cmd/findashctl/cli"
	"github.com/findash/findash/internal/app"
)

func main() {
	if app.InTestMode() {
		return
	}
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	for _, c := range cli.Commands {
		commander.Register(c, "")
	}
	for _, c := range cli.JobCommands {
		commander.Register(c, "jobs")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
