package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sluglab/slugline/internal/core/domain"
	"github.com/sluglab/slugline/internal/core/ports/driven"
	"github.com/sluglab/slugline/internal/core/ports/driving"
	"github.com/sluglab/slugline/internal/filters"
	"github.com/sluglab/slugline/internal/logger"
	"github.com/sluglab/slugline/internal/ranking"
)

// Ensure Search implements the interface.
var _ driving.SearchService = (*Search)(nil)

// SearchConfig tunes the hybrid search pipeline. Passed explicitly into
// the constructor; there is no ambient settings object.
type SearchConfig struct {
	// DefaultLimit is the page size when the query sets none.
	DefaultLimit int

	// SemanticTermThreshold is the minimum free-text term count before
	// vector search is consulted. Short queries are unreliable for
	// embeddings.
	SemanticTermThreshold int

	// SemanticTopK is the nearest-neighbour count requested.
	SemanticTopK int

	// SimilarityThreshold is the minimum cosine similarity for a
	// semantic hit to be considered.
	SimilarityThreshold float64
}

// DefaultSearchConfig returns the standard tuning.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		DefaultLimit:          20,
		SemanticTermThreshold: 3,
		SemanticTopK:          20,
		SimilarityThreshold:   0.35,
	}
}

// Search serves ranked hybrid search over the scene store.
type Search struct {
	store    driven.SceneStore
	vector   driven.VectorIndex
	embedder driven.EmbeddingService
	ranker   *ranking.HybridRanker
	cfg      SearchConfig
}

// NewSearch creates a search service. vector and embedder are optional:
// without them every query runs lexical-only.
func NewSearch(
	store driven.SceneStore,
	vector driven.VectorIndex,
	embedder driven.EmbeddingService,
	ranker *ranking.HybridRanker,
	cfg SearchConfig,
) *Search {
	if ranker == nil {
		ranker = ranking.NewHybridRanker(ranking.DefaultWeights())
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 20
	}
	return &Search{
		store:    store,
		vector:   vector,
		embedder: embedder,
		ranker:   ranker,
		cfg:      cfg,
	}
}

// Search executes a structured query and returns a ranked page.
func (s *Search) Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchResponse, error) {
	start := time.Now()
	logger.Section("Search Execution")

	resp := &domain.SearchResponse{}
	if !q.HasText() && len(q.Characters) == 0 && len(q.Locations) == 0 &&
		len(q.TimesOfDay) == 0 && q.Episodes == nil {
		logger.Debug("Empty query, returning no results")
		resp.ExecutionTime = time.Since(start)
		return resp, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	// Retrieve more than one page so post-filters do not starve it.
	internalLimit := (limit + q.Offset) * 3
	if internalLimit < 60 {
		internalLimit = 60
	}
	logger.Debug("Limit: %d, Offset: %d, internal: %d", limit, q.Offset, internalLimit)

	candidates, err := s.store.SearchCandidates(ctx, q, internalLimit)
	if err != nil {
		return nil, fmt.Errorf("lexical retrieval: %w", err)
	}
	resp.SearchMethodsUsed = append(resp.SearchMethodsUsed, domain.SearchMethodLexical)
	logger.Debug("Lexical candidates: %d", len(candidates))

	if s.shouldRunSemantic(&q) {
		merged, ok := s.semanticMerge(ctx, &q, candidates)
		if ok {
			candidates = merged
			resp.SearchMethodsUsed = append(resp.SearchMethodsUsed, domain.SearchMethodSemantic)
		}
	}

	ranked := s.ranker.Rank(&q, candidates)
	ranked = filters.FromQuery(&q).Apply(ranked)
	s.attachHighlights(&q, ranked)

	resp.TotalCount = len(ranked)
	resp.Results = paginate(ranked, q.Offset, limit)
	resp.HasMore = q.Offset+len(resp.Results) < resp.TotalCount

	if terms := domain.Terms(q.Text); len(terms) > 0 {
		bible, err := s.store.SearchCharacters(ctx, terms)
		if err != nil {
			logger.Warn("Character search failed: %v", err)
		} else {
			resp.BibleResults = bible
		}
	}

	resp.ExecutionTime = time.Since(start)
	logger.Info("Search done: %d results (%v) via %v",
		len(resp.Results), resp.ExecutionTime, resp.SearchMethodsUsed)
	return resp, nil
}

// shouldRunSemantic decides whether vector search augments this query.
func (s *Search) shouldRunSemantic(q *domain.SearchQuery) bool {
	if s.vector == nil || s.embedder == nil {
		return false
	}
	return len(domain.Terms(q.Text)) >= s.cfg.SemanticTermThreshold
}

// semanticMerge runs vector search and unions the hits with the lexical
// candidates by content hash. A scene in both sets keeps the stronger
// signal: its lexical row gains the similarity score instead of being
// double-counted. Lexical results are never displaced; any semantic
// failure degrades to lexical-only and reports ok=false.
func (s *Search) semanticMerge(
	ctx context.Context, q *domain.SearchQuery, candidates []domain.Candidate,
) ([]domain.Candidate, bool) {
	vector, err := s.embedder.Embed(ctx, q.Text)
	if err != nil {
		logger.Warn("Query embedding failed, degrading to lexical-only: %v", err)
		return candidates, false
	}

	hits, err := s.vector.Search(ctx, vector, s.cfg.SemanticTopK, s.cfg.SimilarityThreshold)
	if err != nil {
		logger.Warn("Vector search failed, degrading to lexical-only: %v", err)
		return candidates, false
	}
	logger.Debug("Semantic hits: %d", len(hits))

	similarity := make(map[string]float64, len(hits))
	for _, hit := range hits {
		if hit.Similarity > similarity[hit.ContentHash] {
			similarity[hit.ContentHash] = hit.Similarity
		}
	}

	seen := make(map[string]bool, len(candidates))
	for i := range candidates {
		seen[candidates[i].ContentHash] = true
		if sim, ok := similarity[candidates[i].ContentHash]; ok {
			candidates[i].Relevance = sim
			candidates[i].HasRelevance = true
		}
	}

	var newHashes []string
	for hash := range similarity {
		if !seen[hash] {
			newHashes = append(newHashes, hash)
		}
	}
	if len(newHashes) == 0 {
		return candidates, true
	}

	extra, err := s.store.ScenesByHashes(ctx, newHashes)
	if err != nil {
		logger.Warn("Semantic hydration failed: %v", err)
		return candidates, false
	}
	for i := range extra {
		extra[i].Relevance = similarity[extra[i].ContentHash]
		extra[i].HasRelevance = true
	}

	return append(candidates, extra...), true
}

// attachHighlights adds snippets around matched terms.
func (s *Search) attachHighlights(q *domain.SearchQuery, results []domain.SearchResult) {
	terms := domain.Terms(strings.Join([]string{q.Text, q.DialogueText, q.ActionText}, " "))
	if len(terms) == 0 {
		return
	}
	for i := range results {
		text := results[i].Candidate.ActionText + "\n" + results[i].Candidate.DialogueText
		results[i].Highlights = highlight(text, terms)
	}
}

// highlight extracts up to three sentences containing any query term,
// truncated to 200 characters each.
func highlight(content string, terms []string) []string {
	var highlights []string
	for _, sentence := range splitSentences(content) {
		lower := strings.ToLower(sentence)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				if len(sentence) > 200 {
					sentence = sentence[:200] + "..."
				}
				highlights = append(highlights, sentence)
				break
			}
		}
		if len(highlights) >= 3 {
			break
		}
	}
	return highlights
}

// splitSentences splits content on common terminators.
func splitSentences(content string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for _, r := range content {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			flush()
		}
	}
	flush()

	return sentences
}

// paginate applies offset and limit.
func paginate(results []domain.SearchResult, offset, limit int) []domain.SearchResult {
	if offset >= len(results) {
		return []domain.SearchResult{}
	}
	end := offset + limit
	if end > len(results) {
		end = len(results)
	}
	return results[offset:end]
}
