package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iksnae/anybot/internal"
	"github.com/iksnae/anybot/internal/api"
	"github.com/iksnae/anybot/internal/tui"
)

// chatCmd opens the interactive UI. It is also what the root command runs.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive UI to create, edit and chat with bots",
	Long: `Open the full-screen UI.

  F1  create an assistant from documents and URLs
  F2  update an existing assistant
  F3  chat with the active assistant

Logs are written to the configured log file while the UI is open.
Use --save-transcript to export every conversation when you quit.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func addChatFlags(c *cobra.Command) {
	c.Flags().String("backend", "", "Chat backend: bot (one bot) or query (shared query service)")
	c.Flags().Int("top-n", 0, "Number of sources requested from the query service")
	c.Flags().String("save-transcript", "", "Write the conversations to this file on exit (.md, .json, .jsonl, .yaml)")
	c.Flags().String("format", "", "Transcript format when the file has no extension")
	c.Flags().String("view", string(internal.ViewCreate), "Screen to open first: create, edit or chat")
}

func runChat(cmd *cobra.Command, args []string) error {
	savePath, _ := cmd.Flags().GetString("save-transcript")
	viewName, _ := cmd.Flags().GetString("view")
	view, err := internal.ParseView(viewName)
	if err != nil {
		return err
	}

	if err := internal.SetLogFile(appConfig.Log.File); err != nil {
		internal.PrintWarning(fmt.Sprintf("Logging to stderr: %v", err))
	}
	defer internal.CloseLogger()

	client := newClient()
	store := internal.NewStore()
	store.SetActiveView(view)
	chat := appConfig.Chat
	m := tui.New(store, tui.Options{
		Bots: client,
		Askers: func(botID string) (internal.Asker, error) {
			return api.NewAsker(client, chat, botID)
		},
		Welcome: chat.Welcome,
		Context: cmd.Context(),
	})

	internal.LogInfo("Starting UI (backend=%s, query=%s, bot=%s)", chat.Backend, client.QueryURL(), client.BotURL())
	if err := tui.Run(m); err != nil {
		return fmt.Errorf("chat UI failed: %w", err)
	}

	if savePath == "" {
		return nil
	}
	n, err := exportTranscript(store.Conversations(chat.Backend), savePath, appConfig.Export.Format)
	if err != nil {
		return err
	}
	internal.PrintSuccess(fmt.Sprintf("Saved %d conversation(s) to %s", n, savePath))
	return nil
}

func init() {
	rootCmd.AddCommand(chatCmd)
	addChatFlags(chatCmd)
}
