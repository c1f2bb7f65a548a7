package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a member search query.
type SearchParams struct {
	Query string // User's search query

	// Filters
	Games    []string // Filter by exact game slugs
	Realms   []string // Filter by exact realm slugs
	Roles    []string // Filter by member role
	Statuses []string // Filter by member status (defaults to approved)

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "name", "recent"
	SortOrder string // "asc", "desc"

	// Options
	IncludeFacets bool     // Include facet counts in results
	FacetFields   []string // Which fields to facet on
	Highlight     bool     // Include match highlighting
}

// DefaultSearchParams returns sensible defaults.
// Only active members appear in results unless statuses are set explicitly.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:         20,
		Offset:        0,
		SortBy:        "relevance",
		SortOrder:     "desc",
		Statuses:      []string{"active"},
		IncludeFacets: true,
		FacetFields:   []string{"games", "role"},
		Highlight:     true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []SearchHit  `json:"hits"`
	Facets SearchFacets `json:"facets,omitempty"`
}

// SearchHit represents a single matching member.
type SearchHit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Name       string            `json:"name"`
	Characters []string          `json:"characters,omitempty"`
	Games      []string          `json:"games,omitempty"`
	Role       string            `json:"role,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// SearchFacets contains facet counts.
type SearchFacets struct {
	Games []FacetCount `json:"games,omitempty"`
	Roles []FacetCount `json:"roles,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a member search query.
func (s *MemberIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	addSorting(searchRequest, params)

	if params.IncludeFacets {
		addFacets(searchRequest, params)
	}

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("name")
		searchRequest.Highlight.AddField("characters")
	}

	// Request stored fields
	searchRequest.Fields = []string{
		"id", "name", "characters", "games", "role",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		// Extract stored fields
		if n, ok := hit.Fields["name"].(string); ok {
			searchHit.Name = n
		}
		if r, ok := hit.Fields["role"].(string); ok {
			searchHit.Role = r
		}
		searchHit.Characters = extractStrings(hit.Fields["characters"])
		searchHit.Games = extractStrings(hit.Fields["games"])

		// Extract highlights
		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	if params.IncludeFacets {
		result.Facets = extractFacets(searchResult)
	}

	return result, nil
}

// extractStrings handles Bleve's stored-field quirk: single values come back
// as string, multi values as []interface{}.
func extractStrings(field interface{}) []string {
	switch v := field.(type) {
	case string:
		return []string{v}
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	// Main text query matches display names and character names.
	// A search for "Thrall" should find the member whose character is
	// named Thrall even when their display name is something else.
	if params.Query != "" {
		textQueries := []query.Query{}

		// Display name match with highest boost
		nameMatch := bleve.NewMatchQuery(params.Query)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)
		textQueries = append(textQueries, nameMatch)

		// Character name match
		charMatch := bleve.NewMatchQuery(params.Query)
		charMatch.SetField("characters")
		charMatch.SetBoost(2.0)
		textQueries = append(textQueries, charMatch)

		// Fuzzy matching for typo tolerance on display name
		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("name")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix queries for autocomplete (minimum 2 chars)
		if len(params.Query) >= 2 {
			namePrefix := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			namePrefix.SetField("name")
			namePrefix.SetBoost(0.5)
			textQueries = append(textQueries, namePrefix)

			charPrefix := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			charPrefix.SetField("characters")
			charPrefix.SetBoost(0.5)
			textQueries = append(textQueries, charPrefix)
		}

		// Combine with OR (match any field)
		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Game filter (exact match, OR across slugs)
	if len(params.Games) > 0 {
		gameQueries := make([]query.Query, len(params.Games))
		for i, g := range params.Games {
			gq := bleve.NewTermQuery(g)
			gq.SetField("games")
			gameQueries[i] = gq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(gameQueries...))
	}

	// Realm filter
	if len(params.Realms) > 0 {
		realmQueries := make([]query.Query, len(params.Realms))
		for i, r := range params.Realms {
			rq := bleve.NewTermQuery(r)
			rq.SetField("realms")
			realmQueries[i] = rq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(realmQueries...))
	}

	// Role filter
	if len(params.Roles) > 0 {
		roleQueries := make([]query.Query, len(params.Roles))
		for i, r := range params.Roles {
			rq := bleve.NewTermQuery(r)
			rq.SetField("role")
			roleQueries[i] = rq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(roleQueries...))
	}

	// Status filter (pending members are hidden from normal searches)
	if len(params.Statuses) > 0 {
		statusQueries := make([]query.Query, len(params.Statuses))
		for i, st := range params.Statuses {
			sq := bleve.NewTermQuery(st)
			sq.SetField("status")
			statusQueries[i] = sq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(statusQueries...))
	}

	// Combine all queries with AND
	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params SearchParams) {
	switch params.SortBy {
	case "name":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-name"})
		} else {
			req.SortBy([]string{"name"})
		}
	case "recent":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"created_at"})
		} else {
			req.SortBy([]string{"-created_at"})
		}
	default:
		// Relevance (score) is default - Bleve handles this
		req.SortBy([]string{"-_score"})
	}
}

// addFacets configures facet requests.
func addFacets(req *bleve.SearchRequest, params SearchParams) {
	for _, field := range params.FacetFields {
		facetReq := bleve.NewFacetRequest(field, 20) // Top 20 values
		req.AddFacet(field, facetReq)
	}
}

// extractFacets converts Bleve facets to our format.
func extractFacets(result *bleve.SearchResult) SearchFacets {
	facets := SearchFacets{}

	if gameFacet, ok := result.Facets["games"]; ok {
		for _, term := range gameFacet.Terms.Terms() {
			facets.Games = append(facets.Games, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	if roleFacet, ok := result.Facets["role"]; ok {
		for _, term := range roleFacet.Terms.Terms() {
			facets.Roles = append(facets.Roles, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	return facets
}
