package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/pricelens/models"
)

func main() {
	apiURL := os.Getenv("PRICELENS_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("PRICELENS_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "PRICELENS_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"pricelens",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	extractTool := mcp.NewTool("extract_product",
		mcp.WithDescription("Extract product data (title, price, currency, brand, category, image, availability) from an e-commerce product page. Always returns a record; check extraction_method and the note when the price is 0."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The product page URL"),
		),
		mcp.WithNumber("max_age",
			mcp.Description("Serve a cached result younger than this many milliseconds (default: 0, always extract)"),
		),
	)
	s.AddTool(extractTool, handleExtractProduct(apiURL, apiKey))

	searchTool := mcp.NewTool("search_products",
		mcp.WithDescription("Search Amazon, Flipkart and Myntra for a product name and compare prices. Returns the cheapest priced result plus up to five results per platform."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Product name to search for, at least 2 characters"),
		),
	)
	s.AddTool(searchTool, handleSearchProducts(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the pricelens API and returns the
// response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func handleExtractProduct(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		reqBody := models.ExtractRequest{
			URL:    url,
			MaxAge: int(request.GetFloat("max_age", 0)),
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/extract", reqBody)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("extract request failed: %v", err)), nil
		}

		var resp models.ExtractResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !resp.Success || resp.Data == nil {
			errMsg := "extraction failed"
			if resp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", resp.Error.Code, resp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		return mcp.NewToolResultText(formatPayload(resp.Data)), nil
	}
}

func handleSearchProducts(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 60 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query is required"), nil
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/search", models.SearchRequest{Query: query})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search request failed: %v", err)), nil
		}

		var resp models.SearchResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !resp.Success || resp.SearchResults == nil {
			errMsg := "search failed"
			if resp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", resp.Error.Code, resp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		return mcp.NewToolResultText(formatSearch(resp.SearchResults)), nil
	}
}

// formatSearch lists results per platform, cheapest deal first.
func formatSearch(r *models.SearchResults) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Query: %s\nPriced results: %d\n", r.Query, r.TotalResults)
	if r.BestDeal != nil {
		fmt.Fprintf(&sb, "Best deal: %s on %s at %.2f %s\n  %s\n",
			r.BestDeal.Title, r.BestDeal.Platform, r.BestDeal.Price, r.BestDeal.Currency, r.BestDeal.URL)
	}
	for _, key := range []string{"amazon", "flipkart", "myntra"} {
		list := r.Results[key]
		fmt.Fprintf(&sb, "\n%s (%d)\n", key, len(list))
		for _, res := range list {
			if res.IsSearchLink {
				fmt.Fprintf(&sb, "- %s\n  %s\n", res.Title, res.URL)
				continue
			}
			fmt.Fprintf(&sb, "- %s: %.2f %s\n  %s\n", res.Title, res.Price, res.Currency, res.URL)
		}
	}
	return sb.String()
}

// formatPayload renders a summary header followed by the full JSON record.
func formatPayload(p *models.FinalPayload) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\nPlatform: %s\n", p.Title, p.Platform)
	if p.HasPrice() {
		fmt.Fprintf(&sb, "Price: %.2f %s\n", p.Price, p.Currency)
	} else {
		fmt.Fprintf(&sb, "Price: unknown\n")
	}
	if p.Unavailable {
		sb.WriteString("Availability: unavailable\n")
	}
	fmt.Fprintf(&sb, "Method: %s\n", p.ExtractionMethod)
	if p.ExtractionNote != "" {
		fmt.Fprintf(&sb, "Note: %s\n", p.ExtractionNote)
	}

	raw, err := json.MarshalIndent(p, "", "  ")
	if err == nil {
		sb.WriteString("\n")
		sb.Write(raw)
	}
	return sb.String()
}
