package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/jiralink/rest"
)

// serverInfo is the subset of rest/api/2/serverInfo shown by the test command
type serverInfo struct {
	BaseURL        string `json:"baseUrl"`
	Version        string `json:"version"`
	DeploymentType string `json:"deploymentType"`
	ServerTitle    string `json:"serverTitle"`
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connection to Jira",
	RunE:  runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	logger.Info().Str("url", restClient.URL()).Msg("Testing connection")

	info, err := rest.ExecuteRequestAs[serverInfo](ctx, restClient, rest.MethodGet, "rest/api/2/serverInfo", nil)
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	fmt.Printf("✓ Connected to %s (Jira %s, %s)\n", info.ServerTitle, info.Version, info.DeploymentType)

	projects, err := jiraClient.Projects.GetProjects(ctx)
	if err != nil {
		switch rest.KindOf(err) {
		case rest.KindAuthenticationFailed:
			return fmt.Errorf("server reachable but credentials were rejected: %w", err)
		default:
			return fmt.Errorf("failed to list projects: %w", err)
		}
	}
	fmt.Printf("✓ %d projects visible\n", len(projects))

	return nil
}
