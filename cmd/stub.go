package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iksnae/anybot/internal"
	"github.com/iksnae/anybot/internal/stub"
)

// stubCmd runs a local implementation of both services
var stubCmd = &cobra.Command{
	Use:   "stub-server",
	Short: "Run a local stub of the query and bot services",
	Long: `Serve /query, /health, /api/create-bot, /api/update-bot and /api/chat
from a local SQLite database. Answers quote the uploaded documents that
best match the question, so the UI can be tried without the real services.

Point both --query-url and --bot-url at the stub address to use it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := stub.OpenBotStore(appConfig.Stub.DB)
		if err != nil {
			return fmt.Errorf("failed to open stub database: %w", err)
		}
		defer store.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv, err := stub.NewServer(ctx, store)
		if err != nil {
			return fmt.Errorf("failed to start stub server: %w", err)
		}
		internal.PrintInfo(fmt.Sprintf("Stub API on http://%s (database %s), Ctrl+C to stop", appConfig.Stub.Addr, appConfig.Stub.DB))
		return srv.ListenAndServe(ctx, appConfig.Stub.Addr)
	},
}

func init() {
	rootCmd.AddCommand(stubCmd)
	stubCmd.Flags().String("addr", "", "Listen address (default 127.0.0.1:5000)")
	stubCmd.Flags().String("db", "", "SQLite database file (default in memory)")
}
