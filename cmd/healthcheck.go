package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iksnae/anybot/internal"
	"github.com/iksnae/anybot/internal/api"
)

const probeTimeout = 5 * time.Second

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthReport collects the outcome of every probe
type healthReport struct {
	queryStatus int
	queryErr    error
	botStatus   int
	botErr      error
	health      *api.HealthStatus
	healthErr   error
}

// reachable reports whether both services answered at all
func (r *healthReport) reachable() bool {
	return r.queryErr == nil && r.botErr == nil
}

// probe runs every check concurrently. Individual failures are recorded in
// the report rather than aborting the other checks.
func probe(ctx context.Context, client *api.Client) *healthReport {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	report := &healthReport{}
	var g errgroup.Group
	g.Go(func() error {
		report.queryStatus, report.queryErr = client.Ping(ctx, client.QueryURL())
		return nil
	})
	g.Go(func() error {
		report.botStatus, report.botErr = client.Ping(ctx, client.BotURL())
		return nil
	})
	g.Go(func() error {
		report.health, report.healthErr = client.Health(ctx)
		return nil
	})
	_ = g.Wait()
	return report
}

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that the query and bot services are reachable",
	Long: `Check the health of both services by verifying:
  • The query service answers HTTP requests
  • The bot service answers HTTP requests
  • The query service health endpoint reports a status

Any HTTP response counts as reachable. Use --verbose for details.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		client := newClient()

		fmt.Fprintln(out, sectionStyle.Render("🔍 anybot Health Check"))
		fmt.Fprintln(out)
		fmt.Fprintln(out, infoStyle.Render("Probing services..."))
		if verbose {
			fmt.Fprintf(out, "   Query service: %s\n", client.QueryURL())
			fmt.Fprintf(out, "   Bot service:   %s\n", client.BotURL())
		}
		fmt.Fprintln(out)

		report := probe(cmd.Context(), client)
		printProbe(out, "Query service", client.QueryURL(), report.queryStatus, report.queryErr)
		printProbe(out, "Bot service", client.BotURL(), report.botStatus, report.botErr)

		switch {
		case report.healthErr != nil:
			fmt.Fprintln(out, warningStyle.Render("⚠️  Query service health endpoint unavailable"))
			if verbose {
				fmt.Fprintf(out, "   %v\n", report.healthErr)
			}
		case report.health.Status == "healthy":
			fmt.Fprintln(out, successStyle.Render("✅ Query service reports healthy"))
		default:
			fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("⚠️  Query service reports %s", report.health.Status)))
		}
		if verbose && report.health != nil {
			for key, value := range report.health.Detail {
				if key != "status" {
					fmt.Fprintf(out, "   %s: %v\n", key, value)
				}
			}
		}
		fmt.Fprintln(out)

		// Summary
		fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		fmt.Fprintln(out)
		if !report.reachable() {
			fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
			return fmt.Errorf("health check failed: a service is unreachable")
		}
		fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
		internal.LogDebug("Health check passed (query=%d, bot=%d)", report.queryStatus, report.botStatus)
		return nil
	},
}

func printProbe(w io.Writer, name, url string, status int, err error) {
	if err != nil {
		fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("❌ %s unreachable", name)))
		if verbose {
			fmt.Fprintf(w, "   %v\n", err)
		}
		return
	}
	fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("✅ %s reachable (HTTP %d)", name, status)))
	if verbose {
		fmt.Fprintf(w, "   %s\n", url)
	}
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}
