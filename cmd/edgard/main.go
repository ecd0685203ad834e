package main

import (
	edgardcmd "github.com/initializ/edgard/cmd"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	edgardcmd.SetVersionInfo(version, commit)
	edgardcmd.Execute()
}
