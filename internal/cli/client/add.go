package client

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// CreatePromptRequest represents the create prompt API request.
type CreatePromptRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Content     string   `json:"content"`
	CategoryID  *string  `json:"category_id,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Author      string   `json:"author,omitempty"`
}

// AddCmd creates the add command.
func AddCmd() *cobra.Command {
	var (
		file        string
		title       string
		description string
		categoryID  string
		tags        []string
		author      string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a prompt from stdin or file",
		Long: `Add a prompt from JSON input (stdin or file) or plain text with flags.

Examples:
  # Add from JSON on stdin
  echo '{"title":"Reviewer","content":"You are a code reviewer."}' | promptuary add

  # Add from JSON file
  promptuary add --file prompt.json

  # Add plain text content with flags
  promptuary add --file reviewer.txt --title "Reviewer" --tags review,code`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAdd(file, title, description, categoryID, tags, author, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Input file (JSON or plain text)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Prompt title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Prompt description")
	cmd.Flags().StringVar(&categoryID, "category", "", "Category ID")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Comma-separated tags")
	cmd.Flags().StringVar(&author, "author", "", "Author name")

	return cmd
}

func runAdd(file, title, description, categoryID string, tags []string, author string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	var input []byte
	if file != "" {
		input, err = os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
	} else {
		input, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	if len(input) == 0 {
		return fmt.Errorf("no input provided")
	}

	var req CreatePromptRequest
	if isJSONInput(input) {
		if err := json.Unmarshal(input, &req); err != nil {
			return fmt.Errorf("failed to parse JSON input: %w", err)
		}
	} else {
		if title == "" {
			return fmt.Errorf("--title is required when adding plain text content")
		}
		req.Content = string(input)
	}

	// Flags override JSON fields
	if title != "" {
		req.Title = title
	}
	if description != "" {
		req.Description = description
	}
	if categoryID != "" {
		req.CategoryID = &categoryID
	}
	if len(tags) > 0 {
		req.Tags = tags
	}
	if author != "" {
		req.Author = author
	}

	if req.Title == "" {
		return fmt.Errorf("title is required")
	}
	if req.Content == "" {
		return fmt.Errorf("content is required")
	}

	resp, err := api.Post("/prompts", req)
	if err != nil {
		return fmt.Errorf("failed to create prompt: %w", err)
	}

	var prompt Prompt
	if err := json.Unmarshal(resp.Data, &prompt); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(prompt, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Created prompt: %s\n", prompt.ID)
		fmt.Printf("Title: %s\n", prompt.Title)
		if len(prompt.Tags) > 0 {
			fmt.Printf("Tags: %s\n", strings.Join(prompt.Tags, ", "))
		}
	}

	return nil
}

func isJSONInput(input []byte) bool {
	s := strings.TrimSpace(string(input))
	return len(s) > 0 && (s[0] == '{' || s[0] == '[')
}
