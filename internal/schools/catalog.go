// Package schools provides lookup of college reference data, with best-effort
// deadline enrichment from live admissions pages.
package schools

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/amckenna/college-planner/internal/dates"
	"github.com/amckenna/college-planner/internal/docstore"
	"github.com/amckenna/college-planner/internal/fetch"
	"github.com/amckenna/college-planner/internal/llm"
	"github.com/amckenna/college-planner/internal/types"
)

// Collection is the document collection holding college records.
const Collection = "US-Colleges"

// Catalog reads college records from the document store. Fetcher, when set,
// enables deadline enrichment for records missing a regular decision date;
// model, when set, is consulted for pages the pattern matcher cannot read.
type Catalog struct {
	store   docstore.Store
	fetcher *fetch.CachedFetcher
	model   llm.Client
}

// NewCatalog returns a Catalog over the given store. fetcher and model may be
// nil to disable enrichment and model-based extraction respectively.
func NewCatalog(store docstore.Store, fetcher *fetch.CachedFetcher, model llm.Client) *Catalog {
	return &Catalog{store: store, fetcher: fetcher, model: model}
}

func decodeRecord(doc docstore.Document) (*types.SchoolRecord, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal school document: %w", err)
	}
	var record types.SchoolRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("failed to decode school document: %w", err)
	}
	return &record, nil
}

// GetByName returns the college record with the given schoolName, or nil when
// no such record exists. An unknown school is an expected state, not an error.
func (c *Catalog) GetByName(ctx context.Context, name string) (*types.SchoolRecord, error) {
	docs, err := c.store.Stream(ctx, Collection, docstore.Filter{Field: "schoolName", Equals: name})
	if err != nil {
		return nil, fmt.Errorf("failed to query school %q: %w", name, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return decodeRecord(docs[0])
}

// List returns every college record in the catalog.
func (c *Catalog) List(ctx context.Context) ([]types.SchoolRecord, error) {
	docs, err := c.store.Stream(ctx, Collection, docstore.Filter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list schools: %w", err)
	}
	records := make([]types.SchoolRecord, 0, len(docs))
	for _, doc := range docs {
		record, err := decodeRecord(doc)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}

// ForTargets resolves the records for a student's target schools. Unknown
// schools are skipped; records missing a regular decision deadline are
// enriched from their admissions page when possible.
func (c *Catalog) ForTargets(ctx context.Context, names []string) ([]types.SchoolRecord, error) {
	var records []types.SchoolRecord
	for _, name := range names {
		record, err := c.GetByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if record == nil {
			continue
		}
		c.enrichDeadline(ctx, record)
		records = append(records, *record)
	}
	return records, nil
}

// enrichDeadline fills in a missing regular decision deadline by scraping the
// school's admissions page. Failures are logged and swallowed: generation
// falls back to a synthetic deadline when none is known.
func (c *Catalog) enrichDeadline(ctx context.Context, record *types.SchoolRecord) {
	if record.RegularDecisionDeadline != "" || record.AdmissionsURL == "" || c.fetcher == nil {
		return
	}

	result, err := c.fetcher.Fetch(ctx, record.AdmissionsURL)
	if err != nil {
		log.Printf("[SCHOOLS] could not fetch admissions page for %s: %v", record.Name, err)
		return
	}
	if date, ok := fetch.ExtractDeadline(result.HTML); ok {
		record.RegularDecisionDeadline = date
		return
	}
	if date, ok := c.extractWithModel(ctx, record, result.HTML); ok {
		record.RegularDecisionDeadline = date
	}
}

// extractWithModel asks a language model for the regular decision deadline
// when pattern matching finds nothing. The answer is only trusted if it
// parses as a date.
func (c *Catalog) extractWithModel(ctx context.Context, record *types.SchoolRecord, html string) (string, bool) {
	if c.model == nil {
		return "", false
	}

	text, err := fetch.ExtractMainText(html, fetch.AdmissionsPageSelectors())
	if err != nil || text == "" {
		return "", false
	}

	prompt := llm.BuildExtractionPrompt(llm.AdmissionsDeadlinesSchema(), text)
	out, err := c.model.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		log.Printf("[SCHOOLS] deadline extraction failed for %s: %v", record.Name, err)
		return "", false
	}

	var payload struct {
		RegularDecision string `json:"regular_decision"`
	}
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(out)), &payload); err != nil {
		log.Printf("[SCHOOLS] unparsable extraction output for %s: %v", record.Name, err)
		return "", false
	}
	if _, err := dates.ParseDeadline(payload.RegularDecision, time.Now().Year()); err != nil {
		return "", false
	}
	return payload.RegularDecision, true
}
