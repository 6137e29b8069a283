package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iksnae/anybot/internal"
	"github.com/iksnae/anybot/internal/api"
	"github.com/iksnae/anybot/internal/config"
)

// askCmd sends one question and prints the answer
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask one question and print the answer",
	Long: `Ask a single question without opening the UI.

By default the question goes to the query service and the answer is
followed by the retrieved sources. With --bot the question goes to one
bot on the bot service instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")
		botID, _ := cmd.Flags().GetString("bot")
		savePath, _ := cmd.Flags().GetString("save-transcript")

		chat := appConfig.Chat
		backend := config.BackendQuery
		if botID != "" {
			backend = config.BackendBot
		}
		chat.Backend = backend

		asker, err := api.NewAsker(newClient(), chat, botID)
		if err != nil {
			return err
		}

		transcript := internal.NewTranscript()
		ctrl := internal.NewChatController(transcript, asker)

		var reply internal.Message
		err = internal.ShowProgress(cmd.Context(), "Thinking...", func() error {
			var askErr error
			reply, askErr = ctrl.Ask(cmd.Context(), question)
			return askErr
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, reply.Text)
		if len(reply.Sources) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Sources:")
			fmt.Fprint(out, internal.FormatSources(reply.Sources, 100))
		}

		if savePath != "" {
			conv := internal.Conversation{
				BotID:    botID,
				Backend:  backend,
				Messages: transcript.Messages(),
			}
			if _, err := exportTranscript([]internal.Conversation{conv}, savePath, appConfig.Export.Format); err != nil {
				return err
			}
		}

		if reply.IsError {
			return errors.New("the question could not be answered")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().String("bot", "", "Ask this bot on the bot service instead of the query service")
	askCmd.Flags().Int("top-n", 0, "Number of sources requested from the query service")
	askCmd.Flags().String("save-transcript", "", "Also write the exchange to this file")
	askCmd.Flags().String("format", "", "Transcript format when the file has no extension")
}
