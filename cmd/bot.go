package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/iksnae/anybot/internal"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a bot from documents and documentation URLs",
	Example: `  anybot create --name "API Docs" --doc guide.md --doc auth.md
  anybot create --name "API Docs" --url https://docs.example.com`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBotCommand(cmd, internal.FormCreate)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Replace the name, documents and URLs of a bot",
	Long: `Update an existing bot. The bot ends up with exactly the documents
and URLs given here. Pass --keep to retain a document the server
already has without uploading it again.`,
	Example: `  anybot update --id 1234 --name "API Docs v2" --keep guide.md --doc limits.md`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBotCommand(cmd, internal.FormEdit)
	},
}

func runBotCommand(cmd *cobra.Command, mode internal.FormMode) error {
	name, _ := cmd.Flags().GetString("name")
	docPaths, _ := cmd.Flags().GetStringArray("doc")
	urls, _ := cmd.Flags().GetStringArray("url")
	botID, _ := cmd.Flags().GetString("id")
	kept, _ := cmd.Flags().GetStringArray("keep")

	req := internal.BotRequest{Name: name, URLs: urls}
	for _, doc := range kept {
		req.Documents = append(req.Documents, internal.Document{Name: doc})
	}

	client := newClient()
	ctx := cmd.Context()
	var bot *internal.BotDescriptor

	action := "Creating bot"
	if mode == internal.FormEdit {
		action = "Updating bot"
	}
	steps := []internal.ProgressStep{
		{
			Message: "Reading documents",
			Fn: func() error {
				for _, path := range docPaths {
					doc, err := internal.LoadDocument(path)
					if err != nil {
						return err
					}
					req.Documents = append(req.Documents, doc)
				}
				return nil
			},
		},
		{
			Message: action,
			Fn: func() error {
				var err error
				if mode == internal.FormEdit {
					bot, err = client.UpdateBot(ctx, botID, req)
				} else {
					bot, err = client.CreateBot(ctx, req)
				}
				return err
			},
		},
	}
	if err := internal.ShowProgressWithSteps(ctx, steps); err != nil {
		return err
	}

	verb := "Created"
	if mode == internal.FormEdit {
		verb = "Updated"
	}
	internal.PrintSuccess(fmt.Sprintf("%s bot %s", verb, bot.Name))
	printBot(cmd.OutOrStdout(), *bot)
	return nil
}

func printBot(w io.Writer, bot internal.BotDescriptor) {
	fmt.Fprintf(w, "ID:        %s\n", bot.ID)
	fmt.Fprintf(w, "Name:      %s\n", bot.Name)
	fmt.Fprintf(w, "Documents: %d\n", len(bot.Documents))
	for _, doc := range bot.Documents {
		fmt.Fprintf(w, "  - %s\n", doc.Name)
	}
	fmt.Fprintf(w, "URLs:      %d\n", len(bot.URLs))
	for _, u := range bot.URLs {
		fmt.Fprintf(w, "  - %s\n", u)
	}
}

func addBotFlags(c *cobra.Command) {
	c.Flags().String("name", "", "Bot name")
	c.Flags().StringArray("doc", nil, "Document file to upload (repeatable)")
	c.Flags().StringArray("url", nil, "Documentation URL (repeatable)")
}

func init() {
	rootCmd.AddCommand(createCmd)
	addBotFlags(createCmd)

	rootCmd.AddCommand(updateCmd)
	addBotFlags(updateCmd)
	updateCmd.Flags().String("id", "", "Id of the bot to update")
	updateCmd.Flags().StringArray("keep", nil, "Document already on the server to keep (repeatable)")
}
