package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// SearchResult represents a search result.
type SearchResult struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Snippet    string   `json:"snippet"`
	Tags       []string `json:"tags"`
	Category   string   `json:"category,omitempty"`
	UsageCount int64    `json:"usage_count"`
	CreatedAt  string   `json:"created_at"`
	Score      int      `json:"score"`
}

// SearchResponse represents the search API response.
type SearchResponse struct {
	Results    []SearchResult `json:"results"`
	Cached     bool           `json:"cached"`
	DurationMs int64          `json:"duration_ms"`
}

// SearchCmd creates the search command.
func SearchCmd() *cobra.Command {
	var (
		semantic   bool
		categoryID string
		author     string
		tags       []string
		sort       string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search prompts",
		Long:  "Searches the prompt library. Use --semantic for embedding-based similarity search.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runSearch(args[0], semantic, categoryID, author, tags, sort, limit, outputJSON)
		},
	}

	cmd.Flags().BoolVar(&semantic, "semantic", false, "Use semantic similarity search")
	cmd.Flags().StringVar(&categoryID, "category", "", "Filter by category ID")
	cmd.Flags().StringVar(&author, "author", "", "Filter by author")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Filter by tags (comma-separated)")
	cmd.Flags().StringVar(&sort, "sort", "", "Sort mode (relevance, usage, created)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")

	return cmd
}

func runSearch(query string, semantic bool, categoryID, author string, tags []string, sort string, limit int, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("q", query)
	if semantic {
		params.Set("semantic", "true")
	}
	if categoryID != "" {
		params.Set("category_id", categoryID)
	}
	if author != "" {
		params.Set("author", author)
	}
	if len(tags) > 0 {
		params.Set("tags", strings.Join(tags, ","))
	}
	if sort != "" {
		params.Set("sort", sort)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	resp, err := api.Get("/prompts/search?" + params.Encode())
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(resp.Data, &searchResp); err != nil {
		return fmt.Errorf("failed to parse search results: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(searchResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(searchResp.Results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	cached := ""
	if searchResp.Cached {
		cached = ", cached"
	}
	fmt.Printf("Found %d results (%dms%s):\n\n", len(searchResp.Results), searchResp.DurationMs, cached)
	for i, result := range searchResp.Results {
		fmt.Printf("%d. %s (score %d)\n", i+1, result.Title, result.Score)
		if result.Snippet != "" {
			fmt.Printf("   %s\n", truncate(result.Snippet, 100))
		}
		if result.Category != "" {
			fmt.Printf("   Category: %s\n", result.Category)
		}
		if len(result.Tags) > 0 {
			fmt.Printf("   Tags: %s\n", strings.Join(result.Tags, ", "))
		}
		fmt.Printf("   ID: %s\n", result.ID)
		if i < len(searchResp.Results)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	return nil
}
