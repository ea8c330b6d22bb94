package connectors

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

const defaultSearchLimit = 10

// bingResponse is the subset of the Bing Web Search v7 payload we read.
type bingResponse struct {
	WebPages struct {
		Value []struct {
			Name            string `json:"name"`
			URL             string `json:"url"`
			Snippet         string `json:"snippet"`
			DateLastCrawled string `json:"dateLastCrawled"`
		} `json:"value"`
	} `json:"webPages"`
}

// SearchWeb runs a web search. Outside mock mode it calls the configured
// search API and degrades to the mock result shape on any transport or
// parse failure; it never returns an error.
func (s *Set) SearchWeb(ctx context.Context, args WebSearchArgs) ([]WebResult, error) {
	if s.mock {
		return mockWeb(args), nil
	}
	if s.search.APIKey == "" {
		s.logger.Warn("web search has no API key, returning sample results")
		return mockWeb(args), nil
	}

	results, err := s.bingSearch(ctx, args)
	if err != nil {
		s.logger.Warn("web search failed, returning sample results",
			zap.String("endpoint", s.search.Endpoint),
			zap.Error(err),
		)
		return mockWeb(args), nil
	}
	return results, nil
}

func (s *Set) bingSearch(ctx context.Context, args WebSearchArgs) ([]WebResult, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var body bingResponse
	resp, err := s.http.R().
		SetContext(ctx).
		SetHeader("Ocp-Apim-Subscription-Key", s.search.APIKey).
		SetQueryParams(map[string]string{
			"q":     args.Query,
			"count": strconv.Itoa(limit),
		}).
		SetResult(&body).
		Get(s.search.Endpoint)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%d from search endpoint", resp.StatusCode())
	}

	results := make([]WebResult, 0, len(body.WebPages.Value))
	for _, v := range body.WebPages.Value {
		if len(results) == limit {
			break
		}
		date := v.DateLastCrawled
		if len(date) > 10 {
			date = date[:10]
		}
		results = append(results, WebResult{
			Title:   s.plainText(v.Name),
			Snippet: s.plainText(v.Snippet),
			URL:     v.URL,
			Date:    date,
		})
	}
	return results, nil
}

// plainText strips markup from provider-supplied text.
func (s *Set) plainText(in string) string {
	return html.UnescapeString(s.sanitizer.Sanitize(in))
}
