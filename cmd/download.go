package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var outputFile string

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download URL",
	Short: "Download an attachment or other binary resource",
	Long: `Download raw bytes from Jira, e.g. an attachment content URL. The URL may
be absolute or relative to the configured Jira URL. Without --output the
bytes are written to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write to file instead of stdout")
}

func runDownload(cmd *cobra.Command, args []string) error {
	data, err := restClient.DownloadData(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", args[0], err)
	}

	if outputFile == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(outputFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputFile, err)
	}
	logger.Info().
		Str("file", outputFile).
		Int("bytes", len(data)).
		Msg("Download complete")
	return nil
}
