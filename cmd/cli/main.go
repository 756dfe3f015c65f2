package main

import "github.com/benchkit/cmd/cli/cmd"

func main() {
	cmd.Execute()
}
