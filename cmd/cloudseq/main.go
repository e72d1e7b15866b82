// Package main is the cloudseq command line tool.
package main

import (
	"os"

	"github.com/edaniels/golog"

	"github.com/cloudseq/cloudseq/cli"
)

func main() {
	logger := golog.NewDevelopmentLogger("cloudseq")
	app := cli.NewApp(logger)
	if err := app.Run(os.Args); err != nil {
		logger.Fatal(err)
	}
}
