package main

import (
	"os"

	"github.com/MihkelJ/crowd-fund-yapp/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error("%v", err)
		logger.Sync()
		os.Exit(1)
	}
}
