package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/use-agent/pricelens/models"
)

type options struct {
	APIURL string   `name:"api-url" default:"http://localhost:8080" help:"pricelens API base URL"`
	APIKey string   `name:"api-key" env:"PRICELENS_API_KEY" help:"API key for authenticated requests"`
	Runs   int      `default:"3" help:"Number of runs per URL for averaging"`
	Output string   `default:"benchmark-results.json" help:"JSON output file path"`
	URLs   []string `arg:"" optional:"" help:"Product URLs to benchmark (defaults to a built-in set)"`
}

type target struct {
	Label string
	URL   string
}

// Default product pages, one per platform.
var defaultURLs = []target{
	{"Amazon", "https://www.amazon.in/dp/B0BDJ6ZMCC"},
	{"Flipkart", "https://www.flipkart.com/prestige-pkoss-1-5-electric-kettle/p/itmf3dbfbwhzm9fv"},
	{"Myntra", "https://www.myntra.com/tshirts/roadster/roadster-men-black-cotton-pure-t-shirt/1700944/buy"},
	{"Generic", "https://www.apple.com/shop/buy-iphone/iphone-16"},
}

// --- Benchmark result types ---

type runResult struct {
	Run     int     `json:"run"`
	TotalMs int64   `json:"total_ms"`
	Method  string  `json:"method"`
	Price   float64 `json:"price"`
	Note    string  `json:"note,omitempty"`
	Success bool    `json:"success"`
	Error   string  `json:"error,omitempty"`
}

type urlAverages struct {
	TotalMs   float64 `json:"total_ms"`
	PricedPct float64 `json:"priced_percent"`
}

type urlResult struct {
	URL      string       `json:"url"`
	Label    string       `json:"label"`
	Runs     []runResult  `json:"runs"`
	Averages *urlAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp  string      `json:"timestamp"`
	APIURL     string      `json:"api_url"`
	RunsPerURL int         `json:"runs_per_url"`
	Results    []urlResult `json:"results"`
}

func main() {
	var opts options
	kong.Parse(&opts,
		kong.Name("benchmark"),
		kong.Description("Measure extraction latency and price coverage against a running server."),
	)

	fmt.Println("=== pricelens benchmark ===")
	fmt.Printf("API URL:   %s\n", opts.APIURL)
	fmt.Printf("Runs/URL:  %d\n", opts.Runs)
	fmt.Printf("Output:    %s\n", opts.Output)
	fmt.Println()

	if err := checkAPI(opts.APIURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", opts.APIURL, err)
		fmt.Fprintf(os.Stderr, "Make sure the pricelens server is running\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		APIURL:     opts.APIURL,
		RunsPerURL: opts.Runs,
	}

	targets := defaultURLs
	if len(opts.URLs) > 0 {
		targets = make([]target, 0, len(opts.URLs))
		for _, u := range opts.URLs {
			targets = append(targets, target{Label: "Custom", URL: u})
		}
	}

	client := &http.Client{Timeout: 90 * time.Second}
	for _, t := range targets {
		fmt.Printf("Benchmarking [%s] %s ...\n", t.Label, t.URL)
		ur := urlResult{URL: t.URL, Label: t.Label}

		for i := 1; i <= opts.Runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, opts.Runs)
			rr := benchmarkURL(client, opts, t.URL, i)
			if rr.Success {
				fmt.Printf("OK  %dms  %s  price=%.2f\n", rr.TotalMs, rr.Method, rr.Price)
			} else {
				fmt.Printf("FAILED: %s\n", rr.Error)
			}
			ur.Runs = append(ur.Runs, rr)
		}

		ur.Averages = computeAverages(ur.Runs)
		report.Results = append(report.Results, ur)
		fmt.Println()
	}

	printTable(report.Results)

	if err := writeJSON(opts.Output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", opts.Output)
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/v1/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func benchmarkURL(client *http.Client, opts options, url string, run int) runResult {
	rr := runResult{Run: run}

	bodyBytes, err := json.Marshal(models.ExtractRequest{URL: url})
	if err != nil {
		rr.Error = fmt.Sprintf("marshal error: %v", err)
		return rr
	}

	req, err := http.NewRequest(http.MethodPost, opts.APIURL+"/api/v1/extract", bytes.NewReader(bodyBytes))
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	req.Header.Set("Content-Type", "application/json")
	if opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+opts.APIKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()

	var er models.ExtractResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}

	rr.Success = er.Success && er.Data != nil
	rr.TotalMs = er.Timing.TotalMs
	if er.Data != nil {
		rr.Method = er.Data.ExtractionMethod
		rr.Price = er.Data.Price
		rr.Note = er.Data.ExtractionNote
	}
	if er.Error != nil {
		rr.Error = er.Error.Message
	}
	return rr
}

func computeAverages(runs []runResult) *urlAverages {
	var successCount, priced int
	var avg urlAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		successCount++
		avg.TotalMs += float64(r.TotalMs)
		if r.Price > 0 {
			priced++
		}
	}

	if successCount == 0 {
		return nil
	}

	avg.TotalMs /= float64(successCount)
	avg.PricedPct = 100 * float64(priced) / float64(successCount)
	return &avg
}

func printTable(results []urlResult) {
	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "URL\tAvg Latency\tPriced\tMethod\n")
	fmt.Fprintf(w, "───\t───────────\t──────\t──────\n")

	for _, r := range results {
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\tFAILED\t-\t-\n", truncateURL(r.URL, 40))
			continue
		}
		fmt.Fprintf(w, "%s\t%dms\t%.0f%%\t%s\n",
			truncateURL(r.URL, 40),
			int64(r.Averages.TotalMs),
			r.Averages.PricedPct,
			dominantMethod(r.Runs),
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
}

// dominantMethod is the most frequent extraction method across successful
// runs; ties go to the alphabetically first.
func dominantMethod(runs []runResult) string {
	counts := map[string]int{}
	for _, r := range runs {
		if r.Success {
			counts[r.Method]++
		}
	}
	methods := make([]string, 0, len(counts))
	for m := range counts {
		methods = append(methods, m)
	}
	sort.Strings(methods)

	best, bestCount := "-", 0
	for _, m := range methods {
		if counts[m] > bestCount {
			best, bestCount = m, counts[m]
		}
	}
	return best
}

func truncateURL(u string, max int) string {
	if len(u) <= max {
		return u
	}
	return u[:max-3] + "..."
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
