package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"condo-radar/internal/config"
)

// SourceDiagnostic represents the diagnostic result for a single source URL.
type SourceDiagnostic struct {
	Name          string `json:"name"`
	URL           string `json:"url"`
	Status        string `json:"status"` // "OK", "HTTP_ERROR", "PARSE_ERROR", "EMPTY", "TIMEOUT"
	HTTPCode      int    `json:"http_code"`
	ItemCount     int    `json:"item_count"`
	ErrorMessage  string `json:"error_message,omitempty"`
	ResponseTime  int64  `json:"response_time_ms"`
	ContentLength int64  `json:"content_length"`
}

func main() {
	rules, err := config.LoadRules(os.Getenv("RULES_FILE"))
	if err != nil {
		log.Fatalf("Failed to load rules: %v", err)
	}

	targets := make([]target, 0, len(rules.Subreddits)+1)
	for _, sub := range rules.Subreddits {
		targets = append(targets, target{
			name:   "r/" + sub,
			url:    fmt.Sprintf("https://www.reddit.com/r/%s/new.json?limit=5", sub),
			isJSON: true,
		})
	}
	targets = append(targets, target{name: "bulletin index", url: rules.BulletinIndexURL})

	log.Printf("Diagnosing %d sources...\n", len(targets))

	diagnostics := make([]SourceDiagnostic, 0, len(targets))
	for i, t := range targets {
		log.Printf("[%d/%d] Diagnosing: %s", i+1, len(targets), t.name)
		diagnostics = append(diagnostics, diagnoseSource(t, 30*time.Second))

		// Rate limiting to be nice to servers
		time.Sleep(500 * time.Millisecond)
	}

	generateReport(diagnostics)
	generateJSONReport(diagnostics)
	reportRecentDocuments()
}

type target struct {
	name   string
	url    string
	isJSON bool
}

func diagnoseSource(t target, timeout time.Duration) SourceDiagnostic {
	diag := SourceDiagnostic{
		Name: t.name,
		URL:  t.url,
	}

	startTime := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", t.url, nil)
	if err != nil {
		diag.Status = "REQUEST_ERROR"
		diag.ErrorMessage = err.Error()
		return diag
	}
	req.Header.Set("User-Agent", "condo-radar-diagnostic/1.0")

	resp, err := http.DefaultClient.Do(req)
	diag.ResponseTime = time.Since(startTime).Milliseconds()

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			diag.Status = "TIMEOUT"
			diag.ErrorMessage = fmt.Sprintf("Request timeout after %v", timeout)
		} else {
			diag.Status = "HTTP_ERROR"
			diag.ErrorMessage = err.Error()
		}
		return diag
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Failed to close response body: %v", err)
		}
	}()

	diag.HTTPCode = resp.StatusCode
	diag.ContentLength = resp.ContentLength

	if resp.StatusCode != 200 {
		diag.Status = "HTTP_ERROR"
		diag.ErrorMessage = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.Status)
		return diag
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		diag.Status = "READ_ERROR"
		diag.ErrorMessage = err.Error()
		return diag
	}

	if !t.isJSON {
		diag.Status = "OK"
		diag.ItemCount = 1
		return diag
	}

	var listing struct {
		Data struct {
			Children []json.RawMessage `json:"children"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &listing); err != nil {
		diag.Status = "PARSE_ERROR"
		diag.ErrorMessage = err.Error()
		return diag
	}

	diag.ItemCount = len(listing.Data.Children)
	if diag.ItemCount == 0 {
		diag.Status = "EMPTY"
		diag.ErrorMessage = "Listing has no posts"
		return diag
	}

	diag.Status = "OK"
	return diag
}

func generateReport(diagnostics []SourceDiagnostic) {
	f, err := os.Create("source_diagnostic_report.txt")
	if err != nil {
		log.Printf("Failed to create report file: %v", err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Failed to close report file: %v", err)
		}
	}()

	writef := func(format string, args ...interface{}) {
		if _, err := fmt.Fprintf(f, format, args...); err != nil {
			log.Printf("Failed to write to report: %v", err)
		}
	}

	writef("===============================================\n")
	writef("Source Diagnostic Report\n")
	writef("Generated: %s\n", time.Now().Format(time.RFC3339))
	writef("Total Sources: %d\n", len(diagnostics))
	writef("===============================================\n\n")

	statusCount := make(map[string]int)
	var okCount, errorCount int
	for _, d := range diagnostics {
		statusCount[d.Status]++
		if d.Status == "OK" {
			okCount++
		} else {
			errorCount++
		}
	}

	writef("SUMMARY:\n")
	writef("  ✅ Working: %d (%.1f%%)\n", okCount, float64(okCount)/float64(len(diagnostics))*100)
	writef("  ❌ Broken: %d (%.1f%%)\n", errorCount, float64(errorCount)/float64(len(diagnostics))*100)
	writef("\nSTATUS BREAKDOWN:\n")
	for status, count := range statusCount {
		writef("  %s: %d\n", status, count)
	}
	writef("\n")

	writef("DETAILED RESULTS:\n")
	writef("===============================================\n\n")
	for _, d := range diagnostics {
		writef("Name: %s\n", d.Name)
		writef("  URL: %s\n", d.URL)
		writef("  Status: %s | HTTP: %d | Items: %d\n", d.Status, d.HTTPCode, d.ItemCount)
		if d.ErrorMessage != "" {
			writef("  Error: %s\n", d.ErrorMessage)
		}
		writef("  Response: %dms\n\n", d.ResponseTime)
	}

	log.Println("✅ Text report generated: source_diagnostic_report.txt")
}

func generateJSONReport(diagnostics []SourceDiagnostic) {
	f, err := os.Create("source_diagnostic_report.json")
	if err != nil {
		log.Printf("Failed to create JSON report: %v", err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Failed to close JSON report file: %v", err)
		}
	}()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(diagnostics); err != nil {
		log.Printf("Failed to write JSON report: %v", err)
		return
	}

	log.Println("✅ JSON report generated: source_diagnostic_report.json")
}

// reportRecentDocuments prints per-source document counts for the last 30
// days when DATABASE_URL is set. Skipped silently otherwise so the probe
// works without database access.
func reportRecentDocuments() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Println("DATABASE_URL not set, skipping document counts")
		return
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		return
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	rows, err := db.Query(`
		SELECT source, COUNT(*)
		FROM documents
		WHERE scraped_at >= NOW() - INTERVAL '30 days'
		GROUP BY source
		ORDER BY source`)
	if err != nil {
		log.Printf("Failed to query document counts: %v", err)
		return
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Failed to close rows: %v", err)
		}
	}()

	log.Println("Documents persisted in the last 30 days:")
	for rows.Next() {
		var source string
		var count int64
		if err := rows.Scan(&source, &count); err != nil {
			log.Printf("Failed to scan row: %v", err)
			return
		}
		log.Printf("  %s: %d", source, count)
	}
	if err := rows.Err(); err != nil {
		log.Printf("Row iteration failed: %v", err)
	}
}
