package main

import (
	"os"

	"github.com/erc7824/nitrolite/nearrpc/pkg/log"
)

const version = "v0.1.0"

func main() {
	logger := log.NewZapLogger(log.Config{Format: "console", Level: log.LevelInfo, Output: "stderr"})

	cliApp := newApp(logger)
	if err := cliApp.Run(os.Args); err != nil {
		logger.Fatal("command failed", "error", err)
	}
}
