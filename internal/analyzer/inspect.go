package analyzer

import (
	"context"
	"fmt"

	"github.com/JakeFAU/page-analyzer/internal/extract"
)

// Inspector runs the fetch-and-extract pipeline for one URL.
type Inspector struct {
	fetcher Fetcher
}

// NewInspector builds an Inspector around the given Fetcher.
func NewInspector(fetcher Fetcher) *Inspector {
	return &Inspector{fetcher: fetcher}
}

// FetchAndExtract fetches url once and extracts its signals.
// Fetch failures come back as *FetchError; missing elements never fail extraction.
func (i *Inspector) FetchAndExtract(ctx context.Context, url string) (ExtractionResult, error) {
	page, err := i.fetcher.Fetch(ctx, url)
	if err != nil {
		return ExtractionResult{}, err
	}
	signals, err := extract.FromHTML(page.Body)
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("extract %s: %w", url, err)
	}
	return ExtractionResult{
		StatusCode:  page.StatusCode,
		H1:          signals.H1,
		Title:       signals.Title,
		Description: signals.Description,
	}, nil
}
