package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/cartformat/cart/cmd/cart/cmd"
)

var subcommands = map[string]*flag.FlagSet{
	cmd.PackCmd.Name():   cmd.PackCmd,
	cmd.UnpackCmd.Name(): cmd.UnpackCmd,
	cmd.MetaCmd.Name():   cmd.MetaCmd,
	cmd.IDCmd.Name():     cmd.IDCmd,
	cmd.BenchCmd.Name():  cmd.BenchCmd,
}

func run() int {
	var command *flag.FlagSet

	subcommandNames := []string{}
	for name := range subcommands {
		subcommandNames = append(subcommandNames, name)
	}

	if len(os.Args) < 2 {
		log.Fatalf("You must specify a subcommand. Valid subcommands are: %s\n", strings.Join(subcommandNames, ", "))
	}

	command = subcommands[os.Args[1]]
	if command == nil {
		log.Fatalf("unknown subcommand '%s'. Available commands are: %s\n", os.Args[1], strings.Join(subcommandNames, ", "))
	}

	command.Parse(os.Args[2:])

	switch command.Name() {
	case cmd.PackCmd.Name():
		return cmd.RunPackCmd()
	case cmd.UnpackCmd.Name():
		return cmd.RunUnpackCmd()
	case cmd.MetaCmd.Name():
		return cmd.RunMetaCmd()
	case cmd.IDCmd.Name():
		return cmd.RunIDCmd()
	case cmd.BenchCmd.Name():
		return cmd.RunBenchCmd()
	}

	return 0
}

func main() {
	os.Exit(run())
}
