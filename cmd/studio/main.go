package main

import (
	"os"

	"github.com/romariotrain/video-platform/internal/app"
)

func main() {
	os.Exit(app.Run("studio", run))
}
