package main

import (
	"fmt"
	"os"

	"dupfind/cmd/dupfind/cli"
)

var (
	version = "0.0.1-dev"
	commit  = "main"
)

func main() {
	info := cli.VersionInfo{
		Version: version,
		Commit:  commit,
	}

	root := cli.NewRootCommand(info)
	root.AddCommand(cli.NewVersionCommand(info))
	root.AddCommand(cli.NewConfigCommand())

	if err := root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
