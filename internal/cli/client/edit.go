package client

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

// UpdatePromptRequest represents the update prompt API request.
type UpdatePromptRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Content         string   `json:"content"`
	CategoryID      *string  `json:"category_id"`
	Tags            []string `json:"tags"`
	ChangeSummary   string   `json:"change_summary,omitempty"`
	ExpectedVersion *int64   `json:"expected_version,omitempty"`
}

// EditCmd creates the edit command.
func EditCmd() *cobra.Command {
	var changeSummary string

	cmd := &cobra.Command{
		Use:   "edit <prompt_id>",
		Short: "Edit a prompt in $EDITOR",
		Long:  "Fetches the prompt content, opens it in $EDITOR, and saves the result as a new version.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runEdit(args[0], changeSummary, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&changeSummary, "message", "m", "", "Change summary for the new version")

	return cmd
}

func runEdit(promptID, changeSummary string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get(fmt.Sprintf("/prompts/%s", promptID))
	if err != nil {
		return fmt.Errorf("failed to get prompt: %w", err)
	}

	var prompt Prompt
	if err := json.Unmarshal(resp.Data, &prompt); err != nil {
		return fmt.Errorf("failed to parse prompt: %w", err)
	}

	edited, err := editInEditor(prompt.Content)
	if err != nil {
		return err
	}

	if edited == prompt.Content {
		fmt.Println("No changes made.")
		return nil
	}

	expectedVersion := prompt.CurrentVersion
	req := UpdatePromptRequest{
		Title:           prompt.Title,
		Description:     prompt.Description,
		Content:         edited,
		CategoryID:      prompt.CategoryID,
		Tags:            prompt.Tags,
		ChangeSummary:   changeSummary,
		ExpectedVersion: &expectedVersion,
	}

	updateResp, err := api.Put(fmt.Sprintf("/prompts/%s", promptID), req)
	if err != nil {
		return fmt.Errorf("failed to update prompt: %w", err)
	}

	var updated Prompt
	if err := json.Unmarshal(updateResp.Data, &updated); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(updated, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Updated prompt: %s (now v%d)\n", updated.Title, updated.CurrentVersion)
	}

	return nil
}

func editInEditor(content string) (string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	tmpFile, err := os.CreateTemp("", "promptuary-edit-*.md")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.WriteString(content); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	tmpFile.Close()

	editCmd := exec.Command(editor, tmpPath)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	if err := editCmd.Run(); err != nil {
		return "", fmt.Errorf("editor failed: %w", err)
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return "", fmt.Errorf("failed to read edited file: %w", err)
	}

	return string(edited), nil
}
