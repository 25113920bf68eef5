package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/jiralink/filter"
)

// projectsCmd represents the projects command
var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects",
	Long:  `List every project visible to the configured account, optionally filtered.`,
	RunE:  runProjects,
}

var projectCmd = &cobra.Command{
	Use:   "project KEY",
	Short: "Show one project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProject,
}

func init() {
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(projectCmd)
	addFilterFlags(projectsCmd)
}

func runProjects(cmd *cobra.Command, args []string) error {
	f, err := getFilter()
	if err != nil {
		return err
	}

	projects, err := jiraClient.Projects.GetProjects(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get projects: %w", err)
	}
	projects = filter.Projects(f, projects)

	if len(projects) == 0 {
		fmt.Println("No projects found matching the filter criteria.")
		return nil
	}

	fmt.Printf("\nFound %d projects:\n", len(projects))
	fmt.Println(strings.Repeat("━", 80))
	fmt.Printf("%-12s %-40s %s\n", "KEY", "NAME", "LEAD")
	fmt.Println(strings.Repeat("━", 80))
	for _, p := range projects {
		name := p.Name
		if len(name) > 38 {
			name = name[:35] + "..."
		}
		fmt.Printf("%-12s %-40s %s\n", p.Key, name, p.LeadName())
	}

	return nil
}

func runProject(cmd *cobra.Command, args []string) error {
	p, err := jiraClient.Projects.GetProject(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get project %s: %w", args[0], err)
	}

	fmt.Printf("%s (%s)\n", p.Name, p.Key)
	fmt.Printf("  ID:   %s\n", p.ID)
	if lead := p.LeadName(); lead != "" {
		fmt.Printf("  Lead: %s\n", lead)
	}
	if p.ProjectTypeKey != "" {
		fmt.Printf("  Type: %s\n", p.ProjectTypeKey)
	}
	if p.URL != "" {
		fmt.Printf("  URL:  %s\n", p.URL)
	}
	if p.Description != "" {
		fmt.Printf("\n%s\n", p.Description)
	}
	return nil
}
