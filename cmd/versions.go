package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/jiralink/filter"
	"github.com/s0up4200/jiralink/jira"
)

var (
	sortVersions     bool
	versionDesc      string
	versionStart     string
	versionRelease   string
	versionReleased  bool
	moveFixTo        string
	moveAffectedTo   string
	assumeYes        bool
	versionPageStart int
	versionPageSize  int
)

// versionsCmd represents the versions command
var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "Manage project versions",
}

var versionsListCmd = &cobra.Command{
	Use:   "list KEY...",
	Short: "List the versions of one or more projects",
	Long: `List versions of the given projects. Several projects are loaded
concurrently. Use --filter to narrow the list, e.g.

  jiralink versions list TST --filter 'Released and daysSince(ReleaseDate) < 30'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVersionsList,
}

var versionsPageCmd = &cobra.Command{
	Use:   "page KEY",
	Short: "Show one page of a project's versions",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionsPage,
}

var versionsCreateCmd = &cobra.Command{
	Use:   "create KEY NAME",
	Short: "Create a version",
	Args:  cobra.ExactArgs(2),
	RunE:  runVersionsCreate,
}

var versionsReleaseCmd = &cobra.Command{
	Use:   "release ID",
	Short: "Mark a version as released",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionsRelease,
}

var versionsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a version",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionsDelete,
}

func init() {
	rootCmd.AddCommand(versionsCmd)
	versionsCmd.AddCommand(versionsListCmd, versionsPageCmd, versionsCreateCmd, versionsReleaseCmd, versionsDeleteCmd)

	addFilterFlags(versionsListCmd)
	versionsListCmd.Flags().BoolVar(&sortVersions, "sort", true, "order by semantic version")

	versionsPageCmd.Flags().IntVar(&versionPageStart, "start", 0, "index of the first version")
	versionsPageCmd.Flags().IntVar(&versionPageSize, "size", jira.DefaultPageSize, "page size")

	versionsCreateCmd.Flags().StringVar(&versionDesc, "description", "", "version description")
	versionsCreateCmd.Flags().StringVar(&versionStart, "start-date", "", "start date (YYYY-MM-DD)")
	versionsCreateCmd.Flags().StringVar(&versionRelease, "release-date", "", "release date (YYYY-MM-DD)")
	versionsCreateCmd.Flags().BoolVar(&versionReleased, "released", false, "create as released")

	versionsReleaseCmd.Flags().StringVar(&versionRelease, "release-date", "", "release date (YYYY-MM-DD)")

	versionsDeleteCmd.Flags().StringVar(&moveFixTo, "move-fix-to", "", "version id receiving issues fixed in the deleted version")
	versionsDeleteCmd.Flags().StringVar(&moveAffectedTo, "move-affected-to", "", "version id receiving issues affecting the deleted version")
	versionsDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip confirmation prompt")
}

func runVersionsList(cmd *cobra.Command, args []string) error {
	f, err := getFilter()
	if err != nil {
		return err
	}

	byProject, err := jiraClient.Versions.WarmVersions(cmd.Context(), args)
	if err != nil {
		return fmt.Errorf("failed to get versions: %w", err)
	}

	for _, key := range args {
		versions := filter.Versions(f, byProject[key])
		if sortVersions {
			versions = append([]jira.Version(nil), versions...)
			jira.SortVersions(versions)
		}
		printVersions(key, versions)
	}
	return nil
}

func printVersions(key string, versions []jira.Version) {
	fmt.Printf("\n%s: %d versions\n", key, len(versions))
	fmt.Println(strings.Repeat("━", 80))
	fmt.Printf("%-10s %-30s %-12s %s\n", "ID", "NAME", "RELEASED", "STATUS")
	fmt.Println(strings.Repeat("━", 80))
	for _, v := range versions {
		status := ""
		switch {
		case v.Archived:
			status = "archived"
		case v.Released:
			status = "released"
		case v.Overdue:
			status = "overdue"
		}
		fmt.Printf("%-10s %-30s %-12s %s\n", v.ID, v.Name, v.ReleaseDate, status)
	}
	if latest, ok := jira.Latest(versions); ok {
		fmt.Printf("Latest release: %s\n", latest.Name)
	}
}

func runVersionsPage(cmd *cobra.Command, args []string) error {
	page, err := jiraClient.Versions.GetPagedVersions(cmd.Context(), args[0], versionPageStart, versionPageSize)
	if err != nil {
		return fmt.Errorf("failed to get versions: %w", err)
	}
	printVersions(args[0], page.Values)
	fmt.Printf("Showing %d-%d of %d\n", page.StartAt+1, page.StartAt+len(page.Values), page.Total)
	return nil
}

func runVersionsCreate(cmd *cobra.Command, args []string) error {
	created, err := jiraClient.Versions.CreateVersion(cmd.Context(), jira.VersionCreateInfo{
		ProjectKey:  args[0],
		Name:        args[1],
		Description: versionDesc,
		StartDate:   versionStart,
		ReleaseDate: versionRelease,
		Released:    versionReleased,
	})
	if err != nil {
		return fmt.Errorf("failed to create version: %w", err)
	}

	fmt.Printf("✓ Created version %s (ID: %s) in %s\n", created.Name, created.ID, created.ProjectKey)
	return nil
}

func runVersionsRelease(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	target, err := jiraClient.Versions.GetVersion(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get version %s: %w", args[0], err)
	}

	target.Released = true
	if versionRelease != "" {
		target.ReleaseDate = versionRelease
	}

	updated, err := jiraClient.Versions.UpdateVersion(ctx, *target)
	if err != nil {
		return fmt.Errorf("failed to release version: %w", err)
	}

	fmt.Printf("✓ Released version %s\n", updated.Name)
	return nil
}

func runVersionsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id := args[0]

	target, err := jiraClient.Versions.GetVersion(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get version %s: %w", id, err)
	}

	if !confirm(fmt.Sprintf("Delete version %s (ID: %s)?", target.Name, id), assumeYes) {
		logger.Info().Str("id", id).Msg("Deletion cancelled")
		return nil
	}

	err = jiraClient.Versions.DeleteVersion(ctx, id, jira.DeleteOptions{
		MoveFixIssuesTo:      moveFixTo,
		MoveAffectedIssuesTo: moveAffectedTo,
	})
	if err != nil {
		return fmt.Errorf("failed to delete version: %w", err)
	}

	fmt.Printf("✓ Deleted version %s\n", target.Name)
	return nil
}
