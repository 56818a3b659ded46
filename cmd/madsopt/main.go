// Command madsopt is a command-line driver wiring a parameter file
// (package param), an external black-box evaluator (package
// blackbox), and the algorithm driver (package algo) into a runnable
// optimizer (spec 6, "command-line usage").
//
// Subcommand dispatch follows rwcarlsen-cloudlus/cmd/cloudlus/main.go's
// flag.Arg(0)-keyed CmdFunc map, replacing that tool's serve/work/submit
// set with run/resume.
package main

import (
	"flag"
	"fmt"
	"os"
)

// CmdFunc implements one madsopt subcommand. name is the subcommand's
// own name (for flag.Usage text); args is everything after it.
type CmdFunc func(name string, args []string)

var cmds = map[string]CmdFunc{
	"run":    cmdRun,
	"resume": cmdResume,
}

func newFlagSet(name, desc string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: madsopt %s [options]\n\n%s\n\nOptions:\n", name, desc)
		fs.PrintDefaults()
	}
	return fs
}

func main() {
	log := fmt.Fprintf
	flag.Usage = func() {
		log(os.Stderr, "Usage: madsopt <cmd> [options]\n\nCommands:\n")
		for name := range cmds {
			log(os.Stderr, "  %s\n", name)
		}
		log(os.Stderr, "\nRun 'madsopt <cmd> -h' for a command's options.\n")
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	name := flag.Arg(0)
	cmd, ok := cmds[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "madsopt: unknown command %q\n\n", name)
		flag.Usage()
		os.Exit(1)
	}
	cmd(name, flag.Args()[1:])
}
