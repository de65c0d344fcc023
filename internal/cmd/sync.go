package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/joho/godotenv"
)

// SyncCmd runs one mail sync from the terminal and prints the summary as
// JSON, the shape a cron job or script can consume.
func SyncCmd(ctx context.Context) error {
	godotenv.Load()
	logger := newLogger("sync")

	syncer, _, err := newSyncer(ctx, logger)
	if err != nil {
		return err
	}

	summary, err := syncer.Run(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
