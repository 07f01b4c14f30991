package main

import "github.com/kozaktomas/starmatch/cmd"

func main() {
	cmd.Execute()
}
