package main

import (
	"os"

	"github.com/yanqian/twilight-hud/internal/interface/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
