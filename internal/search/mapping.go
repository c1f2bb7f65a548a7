package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for member documents.
//
// The mapping is designed with these priorities:
//  1. Fast full-text search on display names with English stemming
//  2. Character names searchable without stemming (proper nouns)
//  3. Exact keyword matching for game, realm, role, and status filters
//  4. Term vectors on name/characters for highlighting
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	// Use English analyzer as default for text fields
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	// Name field - primary search target, boosted
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = en.AnalyzerName
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	// Character names - proper nouns, simple analyzer avoids stemming
	// "Thrall" into something unrecognizable
	charactersFieldMapping := bleve.NewTextFieldMapping()
	charactersFieldMapping.Analyzer = simple.Name
	charactersFieldMapping.Store = true
	charactersFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("characters", charactersFieldMapping)

	// --- Keyword fields (exact match, facetable) ---

	// ID - stored but not analyzed
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// Game slugs - for filtering and faceting by game
	gamesFieldMapping := bleve.NewTextFieldMapping()
	gamesFieldMapping.Analyzer = keyword.Name
	gamesFieldMapping.Store = true
	gamesFieldMapping.IncludeTermVectors = true // For faceting
	docMapping.AddFieldMappingsAt("games", gamesFieldMapping)

	// Realm slugs - exact matching keeps compound slugs intact (e.g. "area-52")
	realmsFieldMapping := bleve.NewTextFieldMapping()
	realmsFieldMapping.Analyzer = keyword.Name
	realmsFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("realms", realmsFieldMapping)

	// Role - for filtering by member role
	roleFieldMapping := bleve.NewTextFieldMapping()
	roleFieldMapping.Analyzer = keyword.Name
	roleFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("role", roleFieldMapping)

	// Status - pending members are indexed but filtered out of results
	statusFieldMapping := bleve.NewTextFieldMapping()
	statusFieldMapping.Analyzer = keyword.Name
	statusFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("status", statusFieldMapping)

	// --- Numeric fields (sorting) ---

	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	updatedAtFieldMapping := bleve.NewNumericFieldMapping()
	updatedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("updated_at", updatedAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
