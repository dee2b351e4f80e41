package main

import "github.com/notargets/goles/cmd"

func main() {
	cmd.Execute()
}
