package main

import (
	"fmt"

	"github.com/nexus-rl/envbridge/cmd"
)

// main entry point to the bridge tooling
func main() {
	rootCommand := cmd.GetRootCommand()
	if err := rootCommand.Execute(); err != nil {
		fmt.Println(err)
	}
}
