package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// Prompt represents a prompt as returned by the API.
type Prompt struct {
	ID             string   `json:"id"`
	LibraryID      string   `json:"library_id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Content        string   `json:"content"`
	CategoryID     *string  `json:"category_id"`
	Tags           []string `json:"tags"`
	Author         string   `json:"author"`
	IsFavorite     bool     `json:"is_favorite"`
	UsageCount     int64    `json:"usage_count"`
	LastUsedAt     string   `json:"last_used_at,omitempty"`
	CurrentVersion int64    `json:"current_version"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}

// GetCmd creates the get command.
func GetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "get <prompt_id>",
		Short:   "Get a prompt by ID",
		Long:    "Retrieves a prompt by its ID and displays the full content.",
		Aliases: []string{"view"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runGet(args[0], outputJSON)
		},
	}

	return cmd
}

func runGet(promptID string, outputJSON bool) error {
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

	if outputJSON {
		output, _ := json.MarshalIndent(prompt, "", "  ")
		fmt.Println(string(output))
	} else {
		printPrompt(&prompt)
	}

	return nil
}

func printPrompt(prompt *Prompt) {
	fmt.Printf("Title: %s\n", prompt.Title)
	if prompt.Description != "" {
		fmt.Printf("Description: %s\n", prompt.Description)
	}
	if len(prompt.Tags) > 0 {
		fmt.Printf("Tags: %s\n", strings.Join(prompt.Tags, ", "))
	}
	if prompt.Author != "" {
		fmt.Printf("Author: %s\n", prompt.Author)
	}
	fmt.Printf("Version: %d\n", prompt.CurrentVersion)
	fmt.Printf("Usage: %d", prompt.UsageCount)
	if prompt.IsFavorite {
		fmt.Print("  ★ favorite")
	}
	fmt.Println()
	fmt.Printf("Created: %s\n", prompt.CreatedAt)
	fmt.Printf("Updated: %s\n", prompt.UpdatedAt)
	fmt.Println()
	fmt.Println("--- Content ---")
	fmt.Println(prompt.Content)
}
