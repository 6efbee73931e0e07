package handler

import (
	"os"
	"testing"

	"github.com/MihkelJ/crowd-fund-yapp/internal/logger"
)

func TestMain(m *testing.M) {
	logger.SetDefaultLogger(logger.NewNop())
	os.Exit(m.Run())
}
