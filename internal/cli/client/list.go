package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// ListResponse represents the prompt list API response.
type ListResponse struct {
	Items   []Prompt `json:"items"`
	Cursor  string   `json:"cursor,omitempty"`
	HasMore bool     `json:"has_more"`
}

// ListCmd creates the list command.
func ListCmd() *cobra.Command {
	var (
		favorites bool
		limit     int
		cursor    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List prompts",
		Long:  "Lists prompts in the library, newest first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runList(favorites, limit, cursor, outputJSON)
		},
	}

	cmd.Flags().BoolVar(&favorites, "favorites", false, "List only favorite prompts")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func runList(favorites bool, limit int, cursor string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	path := "/prompts"
	if favorites {
		path = "/prompts/favorites"
	}

	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		params.Set("cursor", cursor)
	}
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	resp, err := api.Get(path)
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	var listResp ListResponse
	if err := json.Unmarshal(resp.Data, &listResp); err != nil {
		// The favorites endpoint returns a bare array.
		var items []Prompt
		if err := json.Unmarshal(resp.Data, &items); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		listResp.Items = items
	}

	if outputJSON {
		output, _ := json.MarshalIndent(listResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(listResp.Items) == 0 {
		fmt.Println("No prompts found.")
		return nil
	}

	fmt.Printf("Found %d prompts:\n\n", len(listResp.Items))
	for i, prompt := range listResp.Items {
		marker := ""
		if prompt.IsFavorite {
			marker = " ★"
		}
		fmt.Printf("%d. %s%s (v%d, used %d times)\n", i+1, prompt.Title, marker, prompt.CurrentVersion, prompt.UsageCount)
		if prompt.Description != "" {
			fmt.Printf("   %s\n", truncate(prompt.Description, 100))
		}
		if len(prompt.Tags) > 0 {
			fmt.Printf("   Tags: %s\n", strings.Join(prompt.Tags, ", "))
		}
		fmt.Printf("   ID: %s\n", prompt.ID)
		if i < len(listResp.Items)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	if listResp.HasMore && listResp.Cursor != "" {
		fmt.Printf("\n%s\n", strings.Repeat("-", 40))
		fmt.Printf("More results available. Use --cursor %s\n", listResp.Cursor)
	}

	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
