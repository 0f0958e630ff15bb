package main

import (
	"log/slog"
	"os"

	"github.com/small-frappuccino/discordstate/pkg/client"
)

func main() {
	if err := client.Run("discordstate", "DISCORDSTATE_TOKEN"); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}
