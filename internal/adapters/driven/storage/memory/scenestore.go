// Package memory provides in-memory store implementations used by unit
// tests and as reference semantics for the SQLite adapter.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sluglab/slugline/internal/core/domain"
	"github.com/sluglab/slugline/internal/core/ports/driven"
)

// Ensure SceneStore implements the interface.
var _ driven.SceneStore = (*SceneStore)(nil)

// scriptRow is the stored script metadata.
type scriptRow struct {
	id       string
	filePath string
	title    string
	seriesID string
	season   int
	episode  int
	order    int
}

// sceneRow is one stored scene.
type sceneRow struct {
	id     int64
	script string // script id
	scene  domain.Scene
	hash   string
}

// SceneStore is a mutex-guarded in-memory SceneStore. ApplyBatch
// mirrors transactional semantics: changes are staged on copies and
// swapped in only when every item succeeds.
type SceneStore struct {
	mu         sync.RWMutex
	scripts    map[string]*scriptRow // by file path
	scenes     map[int64]*sceneRow
	series     map[string]domain.Series    // by name
	characters map[string]domain.Character // by id
	nextScene  int64
	nextOrder  int
}

// NewSceneStore creates an empty store.
func NewSceneStore() *SceneStore {
	return &SceneStore{
		scripts:    make(map[string]*scriptRow),
		scenes:     make(map[int64]*sceneRow),
		series:     make(map[string]domain.Series),
		characters: make(map[string]domain.Character),
	}
}

// GetScriptRecord implements driven.SceneStore.
func (s *SceneStore) GetScriptRecord(_ context.Context, filePath string) (*driven.ScriptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.scripts[filePath]
	if !ok {
		return nil, domain.ErrNotFound
	}

	hashes := make(map[string]int)
	for _, sc := range s.scenes {
		if sc.script == row.id {
			hashes[sc.hash] = sc.scene.SceneNumber
		}
	}

	return &driven.ScriptRecord{ID: row.id, FilePath: filePath, HashSet: hashes}, nil
}

// ApplyBatch implements driven.SceneStore.
func (s *SceneStore) ApplyBatch(_ context.Context, items []domain.BatchItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Stage on copies so a failing item leaves nothing applied.
	scripts := make(map[string]*scriptRow, len(s.scripts))
	for k, v := range s.scripts {
		c := *v
		scripts[k] = &c
	}
	scenes := make(map[int64]*sceneRow, len(s.scenes))
	for k, v := range s.scenes {
		c := *v
		scenes[k] = &c
	}
	characters := make(map[string]domain.Character, len(s.characters))
	for k, v := range s.characters {
		characters[k] = v
	}
	nextScene := s.nextScene
	nextOrder := s.nextOrder

	for _, item := range items {
		script := item.Script

		row, ok := scripts[script.FilePath]
		if !ok {
			nextOrder++
			row = &scriptRow{id: uuid.NewString(), filePath: script.FilePath, order: nextOrder}
			scripts[script.FilePath] = row
		}
		if script.ID == "" {
			script.ID = row.id
		}
		row.title = script.Title
		row.seriesID = script.SeriesID
		row.season = script.SeasonNumber
		row.episode = script.EpisodeNumber
		script.IndexedAt = time.Now().UTC()

		removed := make(map[string]bool, len(item.Changes.Removed))
		for _, h := range item.Changes.Removed {
			removed[h] = true
		}
		for id, sc := range scenes {
			if sc.script == row.id && removed[sc.hash] {
				delete(scenes, id)
			}
		}

		for id, sc := range scenes {
			if sc.script != row.id {
				continue
			}
			if number, ok := item.Changes.Moved[sc.hash]; ok {
				scenes[id].scene.SceneNumber = number
			}
		}

		added := make(map[string]bool, len(item.Changes.Added))
		for _, h := range item.Changes.Added {
			added[h] = true
		}
		for i := range script.Scenes {
			scene := script.Scenes[i]
			hash := scene.Hash()
			if !added[hash] {
				continue
			}
			added[hash] = false
			scene.ScriptID = row.id
			if scene.Season == 0 {
				scene.Season = script.SeasonNumber
			}
			if scene.Episode == 0 {
				scene.Episode = script.EpisodeNumber
			}
			nextScene++
			scenes[nextScene] = &sceneRow{id: nextScene, script: row.id, scene: scene, hash: hash}

			if script.SeriesID != "" {
				for _, speaker := range scene.Speakers() {
					id := domain.CharacterID(script.SeriesID, speaker)
					surface := strings.TrimSpace(speaker)
					existing, ok := characters[id]
					if !ok {
						characters[id] = domain.Character{
							ID:             id,
							SeriesID:       script.SeriesID,
							Name:           surface,
							NormalizedName: domain.NormalizeCharacterName(speaker),
						}
						continue
					}
					// A new surface form for a known character becomes
					// an alias; the first form seen stays canonical.
					if surface != existing.Name && !containsString(existing.Aliases, surface) {
						existing.Aliases = append(append([]string(nil), existing.Aliases...), surface)
						characters[id] = existing
					}
				}
			}
		}
	}

	s.scripts = scripts
	s.scenes = scenes
	s.characters = characters
	s.nextScene = nextScene
	s.nextOrder = nextOrder
	return nil
}

// candidate converts a stored row for query results.
func (s *SceneStore) candidate(row *sceneRow) domain.Candidate {
	var script *scriptRow
	for _, sr := range s.scripts {
		if sr.id == row.script {
			script = sr
			break
		}
	}
	c := domain.Candidate{
		SceneID:      row.id,
		ContentHash:  row.hash,
		ScriptID:     row.script,
		SceneNumber:  row.scene.SceneNumber,
		SceneType:    row.scene.SceneType,
		Location:     row.scene.Location,
		TimeOfDay:    row.scene.TimeOfDay,
		ActionText:   row.scene.ActionText,
		DialogueText: row.scene.DialogueText(),
		Speakers:     row.scene.Speakers(),
		Season:       row.scene.Season,
		Episode:      row.scene.Episode,
	}
	if script != nil {
		c.ScriptPath = script.filePath
		c.ScriptTitle = script.title
		c.ScriptOrder = script.order
	}
	return c
}

// SearchCandidates implements driven.SceneStore with naive text
// predicates standing in for the SQLite FTS index.
func (s *SceneStore) SearchCandidates(_ context.Context, q domain.SearchQuery, limit int) ([]domain.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Candidate
	for _, row := range s.scenes {
		if !matchesQuery(&row.scene, &q) {
			continue
		}
		out = append(out, s.candidate(row))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ScriptOrder != out[j].ScriptOrder {
			return out[i].ScriptOrder < out[j].ScriptOrder
		}
		return out[i].SceneNumber < out[j].SceneNumber
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// matchesQuery applies the same pushdown predicates the SQLite query
// builder generates.
func matchesQuery(scene *domain.Scene, q *domain.SearchQuery) bool {
	action := strings.ToLower(scene.ActionText)
	dialogue := strings.ToLower(scene.DialogueText())
	both := action + " " + dialogue

	if q.Text != "" {
		for _, term := range domain.Terms(q.Text) {
			if !strings.Contains(both, term) {
				return false
			}
		}
	}
	if q.DialogueText != "" && !strings.Contains(dialogue, strings.ToLower(q.DialogueText)) {
		return false
	}
	if q.ActionText != "" && !strings.Contains(action, strings.ToLower(q.ActionText)) {
		return false
	}

	if len(q.Characters) > 0 {
		found := false
		for _, want := range q.Characters {
			key := domain.NormalizeCharacterName(want)
			for _, speaker := range scene.Speakers() {
				if domain.NormalizeCharacterName(speaker) == key {
					found = true
					break
				}
			}
		}
		if !found {
			return false
		}
	}

	if len(q.Locations) > 0 {
		loc := strings.ToLower(scene.Location)
		found := false
		for _, want := range q.Locations {
			if strings.Contains(loc, strings.ToLower(want)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(q.TimesOfDay) > 0 {
		tod := strings.ToLower(strings.TrimSpace(scene.TimeOfDay))
		found := false
		for _, want := range q.TimesOfDay {
			if tod == strings.ToLower(strings.TrimSpace(want)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if q.Episodes != nil && !q.Episodes.Contains(scene.Season, scene.Episode) {
		return false
	}

	return true
}

// ScenesByHashes implements driven.SceneStore.
func (s *SceneStore) ScenesByHashes(_ context.Context, hashes []string) ([]domain.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := make(map[string]bool, len(hashes))
	for _, h := range hashes {
		want[h] = true
	}

	var out []domain.Candidate
	for _, row := range s.scenes {
		if want[row.hash] {
			out = append(out, s.candidate(row))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SceneID < out[j].SceneID })
	return out, nil
}

// CountScenesByHash implements driven.SceneStore.
func (s *SceneStore) CountScenesByHash(_ context.Context, hash string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, row := range s.scenes {
		if row.hash == hash {
			count++
		}
	}
	return count, nil
}

// ResolveSeries implements driven.SceneStore.
func (s *SceneStore) ResolveSeries(_ context.Context, name string) (*domain.Series, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if series, ok := s.series[name]; ok {
		return &series, nil
	}
	series := domain.Series{ID: uuid.NewString(), Name: name, CreatedAt: time.Now().UTC()}
	s.series[name] = series
	return &series, nil
}

// SearchCharacters implements driven.SceneStore. Terms match the
// normalised name or any recorded alias.
func (s *SceneStore) SearchCharacters(_ context.Context, terms []string) ([]domain.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Character
	for _, ch := range s.characters {
		for _, term := range terms {
			if characterMatches(&ch, strings.ToLower(term)) {
				out = append(out, ch)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// characterMatches reports whether the term appears in the character's
// normalised name or any alias.
func characterMatches(ch *domain.Character, term string) bool {
	if strings.Contains(ch.NormalizedName, term) {
		return true
	}
	for _, alias := range ch.Aliases {
		if strings.Contains(strings.ToLower(alias), term) {
			return true
		}
	}
	return false
}

// containsString reports whether the slice holds the exact value.
func containsString(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// CharacterLineCounts implements driven.SceneStore.
func (s *SceneStore) CharacterLineCounts(_ context.Context, seriesID string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scriptsBySeries := make(map[string]bool)
	for _, sr := range s.scripts {
		if sr.seriesID == seriesID {
			scriptsBySeries[sr.id] = true
		}
	}

	counts := make(map[string]int)
	for _, row := range s.scenes {
		if !scriptsBySeries[row.script] {
			continue
		}
		for _, line := range row.scene.Dialogue {
			counts[domain.NormalizeCharacterName(line.CharacterName)]++
		}
	}
	return counts, nil
}
