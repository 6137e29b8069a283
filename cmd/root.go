package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iksnae/anybot/internal"
	"github.com/iksnae/anybot/internal/api"
	"github.com/iksnae/anybot/internal/config"
)

var (
	cfgFile string
	verbose bool
	version string = "dev"
	commit  string = "unknown"
	date    string = "unknown"

	// appConfig is loaded before any command runs
	appConfig = config.Default()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "anybot",
	Short: "Build documentation assistants and chat with them",
	Long: `A terminal front end for the anybot services.

Create an assistant from documents and documentation URLs, refine it,
and chat with it. Questions go either to one bot on the bot service or
to the shared query service.

Quick Start:
  anybot                                   # open the chat UI
  anybot create --name Docs --doc guide.md # create a bot
  anybot ask "How do I authenticate?"      # one-shot question
  anybot stub-server                       # run a local API to try it out

Configuration is read from .env, ~/.anybot/config.yaml or ./anybot.yaml,
and ANYBOT_* environment variables. Flags override all of them.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		internal.SetVerbose(verbose)
		cfg, err := config.Load(config.Options{Path: cfgFile, Flags: cmd.Flags()})
		if err != nil {
			return err
		}
		appConfig = cfg
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		internal.PrintError(fmt.Sprintf("Error: %v", err))
		os.Exit(1)
	}
}

// newClient builds an API client from the loaded configuration
func newClient() *api.Client {
	return api.NewClient(appConfig.API)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.anybot/config.yaml or ./anybot.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().String("query-url", "", "Base URL of the query service")
	rootCmd.PersistentFlags().String("bot-url", "", "Base URL of the bot service")
	rootCmd.PersistentFlags().Duration("timeout", time.Duration(0), "HTTP timeout per request (0 for none)")
	addChatFlags(rootCmd)

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
