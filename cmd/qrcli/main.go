// cmd/qrcli/main.go
package main

import (
	"os"

	"qrstudio-backend/internal/cli"
)

func main() {
	if err := cli.NewRootCommand(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
