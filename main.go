package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dotprompt/dotprompt/internal/cli"
	"github.com/dotprompt/dotprompt/internal/errors"
	"github.com/dotprompt/dotprompt/internal/service"
)

var version = "0.1.0"

func main() {
	var (
		showVersion = flag.Bool("version", false, "Print version information")
		libraryDir  = flag.String("dir", "", "Prompt library directory (default $DOTPROMPT_DIR or ~/.dotprompt)")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("dotprompt %s\n", version)
		return
	}

	svc, err := service.NewService(*libraryDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	c := cli.NewCLI(svc)
	if err := c.ExecuteCommand(flag.Args()); err != nil {
		appErr := errors.GetAppError(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", appErr)
		os.Exit(1)
	}
}
