package client

import (
	"encoding/json"
	"fmt"
	"path"

	"github.com/spf13/cobra"
)

// ExportResult represents the export API response.
type ExportResult struct {
	Key         string `json:"key"`
	DownloadURL string `json:"download_url"`
	PromptCount int    `json:"prompt_count"`
	ExportedAt  string `json:"exported_at"`
}

// PullCmd creates the pull command.
func PullCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Download a library snapshot",
		Long:  "Exports the library on the server and downloads the JSON snapshot to a local file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runPull(output, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&output, "out", "O", "", "Output file (default: snapshot filename from the server)")

	return cmd
}

func runPull(outputPath string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Post("/export", nil)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	var result ExportResult
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse export response: %w", err)
	}

	if outputPath == "" {
		outputPath = path.Base(result.Key)
	}

	if err := api.DownloadFile(result.DownloadURL, outputPath); err != nil {
		return fmt.Errorf("failed to download snapshot: %w", err)
	}

	if outputJSON {
		out, _ := json.MarshalIndent(map[string]interface{}{
			"success":      true,
			"prompt_count": result.PromptCount,
			"exported_at":  result.ExportedAt,
			"path":         outputPath,
		}, "", "  ")
		fmt.Println(string(out))
	} else {
		fmt.Printf("Downloaded snapshot with %d prompts to %s\n", result.PromptCount, outputPath)
	}

	return nil
}
