package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/forkline/forkline/backend/internal/agent"
	"github.com/forkline/forkline/backend/internal/nutrition"
)

// fetchPageLimit caps how much extracted page text is returned to the
// model per fetch.
const fetchPageLimit = 4000

// NewRecipeToolkit assembles the fixed toolkit offered to the generation
// agent: catalog search for inspiration, page fetching to dig into a
// source, and nutrition lookup for individual ingredients.
func NewRecipeToolkit(recipes *RecipeService, foods nutrition.Client) *agent.Toolkit {
	tools := []agent.Tool{
		searchRecipesTool(recipes),
		fetchPageTool(&http.Client{Timeout: 15 * time.Second}),
	}
	if foods != nil {
		tools = append(tools, nutritionTool(foods))
	}
	return agent.NewToolkit(tools...)
}

func searchRecipesTool(recipes *RecipeService) agent.Tool {
	return agent.Tool{
		Name:        "search_recipes",
		Description: "Search the recipe catalog for existing recipes similar to a description. Use for inspiration and cooking methods; do not copy recipes directly.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"query":{"type":"string","description":"Free-text description of the dish"}},"required":["query"]}`),
		Run: func(ctx context.Context, args json.RawMessage) (string, error) {
			var params struct {
				Query string `json:"query"`
			}
			if err := json.Unmarshal(args, &params); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}

			matches, err := recipes.SearchSimilar(ctx, params.Query, 3)
			if err != nil {
				return "", err
			}

			summaries := make([]map[string]interface{}, 0, len(matches))
			for _, r := range matches {
				summaries = append(summaries, map[string]interface{}{
					"recipe_id":   r.ID.String(),
					"title":       r.Title,
					"description": r.Description,
					"servings":    r.Servings,
				})
			}

			out, err := json.Marshal(summaries)
			if err != nil {
				return "", err
			}
			return string(out), nil
		},
	}
}

func fetchPageTool(client *http.Client) agent.Tool {
	return agent.Tool{
		Name:        "fetch_page",
		Description: "Fetch a web page and return its readable text. Use to dive deeper into a recipe source.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"url":{"type":"string","description":"Absolute URL to fetch"}},"required":["url"]}`),
		Run: func(ctx context.Context, args json.RawMessage) (string, error) {
			var params struct {
				URL string `json:"url"`
			}
			if err := json.Unmarshal(args, &params); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}

			return fetchPageText(ctx, client, params.URL)
		},
	}
}

func nutritionTool(foods nutrition.Client) agent.Tool {
	return agent.Tool{
		Name:        "get_nutrition",
		Description: "Look up nutrition information for a single food item or ingredient. Query one ingredient at a time, not whole recipes.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"query":{"type":"string","description":"Food name, e.g. 'rolled oats'"}},"required":["query"]}`),
		Run: func(ctx context.Context, args json.RawMessage) (string, error) {
			var params struct {
				Query string `json:"query"`
			}
			if err := json.Unmarshal(args, &params); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}

			records, err := foods.Search(ctx, params.Query, 3)
			if err != nil {
				return "", err
			}

			out, err := json.Marshal(records)
			if err != nil {
				return "", err
			}
			return string(out), nil
		},
	}
}

// fetchPageText downloads the page and extracts its visible text,
// dropping script and style content.
func fetchPageText(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	var b strings.Builder
	doc.Find("h1, h2, h3, p, li").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		b.WriteString(text)
		b.WriteString("\n")
	})

	text := b.String()
	if text == "" {
		text = strings.TrimSpace(doc.Text())
	}
	if len(text) > fetchPageLimit {
		text = text[:fetchPageLimit]
	}
	return text, nil
}
