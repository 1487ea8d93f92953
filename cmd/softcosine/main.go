package main

import (
	"os"

	"github.com/botirk38/softcosine/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
