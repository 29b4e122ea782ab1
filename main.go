// erdchat – ask questions about a PostgreSQL schema in plain language.
//
// Entry point: runs the Cobra root command, which starts the chat loop.
package main

import (
	"os"

	"github.com/DachengChen/erdchat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
