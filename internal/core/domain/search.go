package domain

import "time"

// Search methods reported in a SearchResponse. A degraded search (say,
// the embedding service was unreachable) reports only the methods that
// actually ran.
const (
	SearchMethodLexical  = "lexical"
	SearchMethodSemantic = "semantic"
)

// EpisodeRef addresses one episode as season/episode coordinates.
type EpisodeRef struct {
	Season  int
	Episode int
}

// Ordinal flattens the reference for range comparison.
func (r EpisodeRef) Ordinal() int {
	return r.Season*1000 + r.Episode
}

// EpisodeRange is an inclusive span of episodes.
type EpisodeRange struct {
	From EpisodeRef
	To   EpisodeRef
}

// Contains reports whether the given coordinates fall inside the range.
func (r EpisodeRange) Contains(season, episode int) bool {
	o := EpisodeRef{Season: season, Episode: episode}.Ordinal()
	return o >= r.From.Ordinal() && o <= r.To.Ordinal()
}

// SearchQuery is a structured search request. All fields are optional;
// an entirely empty query matches nothing.
type SearchQuery struct {
	// Text is free text matched against both action and dialogue.
	Text string

	// DialogueText is matched against dialogue only (dialogue:"...").
	DialogueText string

	// ActionText is matched against action only (action:"...").
	ActionText string

	// Characters restricts results to scenes where any of the named
	// characters speak (character:NAME).
	Characters []string

	// Locations restricts results by scene location (location:NAME).
	Locations []string

	// TimesOfDay restricts results by time of day.
	TimesOfDay []string

	// Episodes restricts results to an episode range (s1e2-s2e5).
	Episodes *EpisodeRange

	// Limit and Offset paginate the ranked result list.
	Limit  int
	Offset int
}

// HasText reports whether the query carries any text criteria.
func (q *SearchQuery) HasText() bool {
	return q.Text != "" || q.DialogueText != "" || q.ActionText != ""
}

// Candidate is an unranked row retrieved for a query, carrying every
// column downstream rankers need.
type Candidate struct {
	// SceneID is the storage row identifier.
	SceneID int64

	// ContentHash identifies the scene content.
	ContentHash string

	// ScriptID, ScriptPath and ScriptTitle describe the owning script.
	ScriptID    string
	ScriptPath  string
	ScriptTitle string

	// ScriptOrder is the script's position among all indexed scripts,
	// used for deterministic tie-breaking.
	ScriptOrder int

	// SceneNumber is the scene's position within its script.
	SceneNumber int

	SceneType SceneType
	Location  string
	TimeOfDay string

	// ActionText and DialogueText are the raw texts for rankers.
	ActionText   string
	DialogueText string

	// Speakers are the distinct character names in the scene.
	Speakers []string

	Season  int
	Episode int

	// Relevance is a precomputed semantic similarity in [0,1].
	// Valid only when HasRelevance is true.
	Relevance    float64
	HasRelevance bool
}

// SearchResult is one ranked hit.
type SearchResult struct {
	// Candidate is the matched scene.
	Candidate Candidate

	// Score is the combined ranking score.
	Score float64

	// Highlights contains snippets around matched terms.
	Highlights []string
}

// SearchResponse is the full answer to a search request.
type SearchResponse struct {
	// Results is the ranked, paginated result page.
	Results []SearchResult

	// BibleResults are series characters whose name or alias matched the
	// query terms.
	BibleResults []Character

	// TotalCount is the number of results before pagination.
	TotalCount int

	// HasMore is true when Offset+len(Results) < TotalCount.
	HasMore bool

	// ExecutionTime is the wall-clock duration of the search.
	ExecutionTime time.Duration

	// SearchMethodsUsed lists the retrieval methods that actually ran.
	SearchMethodsUsed []string
}
