package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sluglab/slugline/internal/core/domain"
	"github.com/sluglab/slugline/internal/core/ports/driven"
)

// sceneStore implements driven.SceneStore.
type sceneStore struct {
	store *Store
}

var _ driven.SceneStore = (*sceneStore)(nil)

// GetScriptRecord returns the last-indexed state for a file path.
func (s *sceneStore) GetScriptRecord(ctx context.Context, filePath string) (*driven.ScriptRecord, error) {
	var record driven.ScriptRecord
	record.FilePath = filePath
	err := s.store.db.QueryRowContext(ctx,
		"SELECT id FROM scripts WHERE file_path = ?", filePath,
	).Scan(&record.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("querying script: %w", err)
	}

	rows, err := s.store.db.QueryContext(ctx,
		"SELECT content_hash, scene_number FROM scenes WHERE script_id = ?", record.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying scene hashes: %w", err)
	}
	defer rows.Close()

	record.HashSet = make(map[string]int)
	for rows.Next() {
		var hash string
		var number int
		if err := rows.Scan(&hash, &number); err != nil {
			return nil, fmt.Errorf("scanning scene hash: %w", err)
		}
		record.HashSet[hash] = number
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scene hashes: %w", err)
	}

	return &record, nil
}

// ApplyBatch applies every item's change set inside one transaction.
// A failure anywhere rolls back all items and reports the failing script.
func (s *sceneStore) ApplyBatch(ctx context.Context, items []domain.BatchItem) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, item := range items {
		if err := s.applyItem(ctx, tx, item); err != nil {
			return &domain.ImportError{
				Path:     item.Script.FilePath,
				Category: domain.CategoryDatabase,
				Err:      err,
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// applyItem writes one script's changes: script upsert, removed scene
// deletes, moved scene renumbers, added scene inserts, character upserts.
func (s *sceneStore) applyItem(ctx context.Context, tx *sql.Tx, item domain.BatchItem) error {
	script := item.Script

	scriptID, err := s.upsertScript(ctx, tx, script)
	if err != nil {
		return err
	}
	script.ID = scriptID

	for _, hash := range item.Changes.Removed {
		var sceneID int64
		err := tx.QueryRowContext(ctx,
			"SELECT id FROM scenes WHERE script_id = ? AND content_hash = ?",
			scriptID, hash,
		).Scan(&sceneID)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return fmt.Errorf("finding removed scene: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM scene_fts WHERE rowid = ?", sceneID); err != nil {
			return fmt.Errorf("deleting lexical row: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM scenes WHERE id = ?", sceneID); err != nil {
			return fmt.Errorf("deleting scene: %w", err)
		}
	}

	for hash, number := range item.Changes.Moved {
		if _, err := tx.ExecContext(ctx,
			"UPDATE scenes SET scene_number = ? WHERE script_id = ? AND content_hash = ?",
			number, scriptID, hash,
		); err != nil {
			return fmt.Errorf("renumbering scene: %w", err)
		}
	}

	added := make(map[string]bool, len(item.Changes.Added))
	for _, hash := range item.Changes.Added {
		added[hash] = true
	}

	for i := range script.Scenes {
		scene := &script.Scenes[i]
		hash := scene.Hash()
		if !added[hash] {
			continue
		}
		// Duplicate content within a script collapses to one row.
		added[hash] = false

		if err := s.insertScene(ctx, tx, script, scene, hash); err != nil {
			return err
		}

		if script.SeriesID != "" {
			for _, speaker := range scene.Speakers() {
				if err := s.upsertCharacter(ctx, tx, script.SeriesID, speaker); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// upsertScript inserts the script row on first index, or refreshes its
// metadata on re-index. The script_order of an existing row is stable.
func (s *sceneStore) upsertScript(ctx context.Context, tx *sql.Tx, script *domain.Script) (string, error) {
	now := time.Now().UTC()

	var id string
	err := tx.QueryRowContext(ctx,
		"SELECT id FROM scripts WHERE file_path = ?", script.FilePath,
	).Scan(&id)

	switch {
	case err == sql.ErrNoRows:
		id = script.ID
		if id == "" {
			id = uuid.NewString()
		}
		var order int
		if err := tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(script_order), 0) + 1 FROM scripts",
		).Scan(&order); err != nil {
			return "", fmt.Errorf("assigning script order: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO scripts
				(id, file_path, title, format_type, series_id, season_number, episode_number, script_order, indexed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, id, script.FilePath, script.Title, script.FormatType,
			nullString(script.SeriesID), script.SeasonNumber, script.EpisodeNumber, order, now)
		if err != nil {
			return "", fmt.Errorf("inserting script: %w", err)
		}
	case err != nil:
		return "", fmt.Errorf("querying script: %w", err)
	default:
		_, err = tx.ExecContext(ctx, `
			UPDATE scripts SET
				title = ?, format_type = ?, series_id = ?,
				season_number = ?, episode_number = ?, indexed_at = ?
			WHERE id = ?
		`, script.Title, script.FormatType, nullString(script.SeriesID),
			script.SeasonNumber, script.EpisodeNumber, now, id)
		if err != nil {
			return "", fmt.Errorf("updating script: %w", err)
		}
	}

	return id, nil
}

// insertScene writes the scene row, its dialogue lines, and the lexical
// index row sharing the scene's rowid.
func (s *sceneStore) insertScene(
	ctx context.Context, tx *sql.Tx, script *domain.Script, scene *domain.Scene, hash string,
) error {
	season, episode := scene.Season, scene.Episode
	if season == 0 {
		season = script.SeasonNumber
	}
	if episode == 0 {
		episode = script.EpisodeNumber
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO scenes
			(script_id, content_hash, scene_number, scene_type, location, time_of_day, action_text, season, episode)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, script.ID, hash, scene.SceneNumber, string(scene.SceneType),
		scene.Location, scene.TimeOfDay, scene.ActionText, season, episode)
	if err != nil {
		return fmt.Errorf("inserting scene: %w", err)
	}

	sceneID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting scene id: %w", err)
	}

	for i, line := range scene.Dialogue {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO dialogue_lines
				(scene_id, position, character_name, normalized_character, parenthetical, text)
			VALUES (?, ?, ?, ?, ?, ?)
		`, sceneID, i, line.CharacterName,
			domain.NormalizeCharacterName(line.CharacterName),
			line.Parenthetical, line.Text); err != nil {
			return fmt.Errorf("inserting dialogue line: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO scene_fts (rowid, action, dialogue, location)
		VALUES (?, ?, ?, ?)
	`, sceneID, scene.ActionText, scene.DialogueText(), scene.Location); err != nil {
		return fmt.Errorf("inserting lexical row: %w", err)
	}

	return nil
}

// upsertCharacter ensures one character row per normalised name per
// series. The first surface form seen becomes the canonical name; any
// later form resolving to the same character ("WALT (V.O.)" onto
// "WALT") is appended to the row's aliases.
func (s *sceneStore) upsertCharacter(ctx context.Context, tx *sql.Tx, seriesID, name string) error {
	normalized := domain.NormalizeCharacterName(name)
	if normalized == "" {
		return nil
	}
	surface := strings.TrimSpace(name)

	var id, canonical, aliasesJSON string
	err := tx.QueryRowContext(ctx,
		"SELECT id, name, aliases FROM characters WHERE series_id = ? AND normalized_name = ?",
		seriesID, normalized,
	).Scan(&id, &canonical, &aliasesJSON)

	switch {
	case err == sql.ErrNoRows:
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO characters (id, series_id, name, normalized_name)
			VALUES (?, ?, ?, ?)
		`, domain.CharacterID(seriesID, name), seriesID, surface, normalized); err != nil {
			return fmt.Errorf("inserting character: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("querying character: %w", err)
	}

	if surface == canonical {
		return nil
	}

	var aliases []string
	if aliasesJSON != "" {
		if err := json.Unmarshal([]byte(aliasesJSON), &aliases); err != nil {
			return fmt.Errorf("unmarshaling aliases: %w", err)
		}
	}
	for _, a := range aliases {
		if a == surface {
			return nil
		}
	}
	aliases = append(aliases, surface)

	encoded, err := json.Marshal(aliases)
	if err != nil {
		return fmt.Errorf("marshaling aliases: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE characters SET aliases = ? WHERE id = ?", string(encoded), id); err != nil {
		return fmt.Errorf("updating aliases: %w", err)
	}
	return nil
}

// candidateColumns is the shared select list for candidate queries.
const candidateColumns = `
	s.id, s.content_hash,
	sc.id, sc.file_path, sc.title, sc.script_order,
	s.scene_number, s.scene_type, s.location, s.time_of_day, s.action_text,
	(SELECT COALESCE(GROUP_CONCAT(d.text, ' '), '') FROM dialogue_lines d WHERE d.scene_id = s.id),
	s.season, s.episode
`

// SearchCandidates retrieves unranked candidates, pushing lexical match
// and structural filters down to SQLite.
func (s *sceneStore) SearchCandidates(
	ctx context.Context, q domain.SearchQuery, limit int,
) ([]domain.Candidate, error) {
	var sb strings.Builder
	var args []any

	sb.WriteString("SELECT " + candidateColumns + `
		FROM scenes s
		JOIN scripts sc ON sc.id = s.script_id
		WHERE 1=1
	`)

	if q.HasText() {
		sb.WriteString(" AND s.id IN (SELECT rowid FROM scene_fts WHERE scene_fts MATCH ?)")
		args = append(args, buildMatch(q))
	}

	if len(q.Characters) > 0 {
		placeholders := make([]string, len(q.Characters))
		for i, name := range q.Characters {
			placeholders[i] = "?"
			args = append(args, domain.NormalizeCharacterName(name))
		}
		sb.WriteString(` AND EXISTS (
			SELECT 1 FROM dialogue_lines d
			WHERE d.scene_id = s.id AND d.normalized_character IN (` +
			strings.Join(placeholders, ", ") + "))")
	}

	if len(q.Locations) > 0 {
		clauses := make([]string, len(q.Locations))
		for i, loc := range q.Locations {
			clauses[i] = "instr(LOWER(s.location), ?) > 0"
			args = append(args, strings.ToLower(loc))
		}
		sb.WriteString(" AND (" + strings.Join(clauses, " OR ") + ")")
	}

	if len(q.TimesOfDay) > 0 {
		placeholders := make([]string, len(q.TimesOfDay))
		for i, t := range q.TimesOfDay {
			placeholders[i] = "?"
			args = append(args, strings.ToLower(t))
		}
		sb.WriteString(" AND LOWER(s.time_of_day) IN (" + strings.Join(placeholders, ", ") + ")")
	}

	if q.Episodes != nil {
		sb.WriteString(" AND (s.season * 1000 + s.episode) BETWEEN ? AND ?")
		args = append(args, q.Episodes.From.Ordinal(), q.Episodes.To.Ordinal())
	}

	sb.WriteString(" ORDER BY sc.script_order, s.scene_number LIMIT ?")
	args = append(args, limit)

	rows, err := s.store.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying candidates: %w", err)
	}
	defer rows.Close()

	candidates, err := scanCandidates(rows)
	if err != nil {
		return nil, err
	}
	if err := s.hydrateSpeakers(ctx, candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

// ScenesByHashes hydrates candidates for semantic hits.
func (s *sceneStore) ScenesByHashes(ctx context.Context, hashes []string) ([]domain.Candidate, error) {
	if len(hashes) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(hashes))
	args := make([]any, len(hashes))
	for i, h := range hashes {
		placeholders[i] = "?"
		args[i] = h
	}

	rows, err := s.store.db.QueryContext(ctx, "SELECT "+candidateColumns+`
		FROM scenes s
		JOIN scripts sc ON sc.id = s.script_id
		WHERE s.content_hash IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY sc.script_order, s.scene_number
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying scenes by hash: %w", err)
	}
	defer rows.Close()

	candidates, err := scanCandidates(rows)
	if err != nil {
		return nil, err
	}
	if err := s.hydrateSpeakers(ctx, candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

// CountScenesByHash reports how many scene rows reference a hash.
func (s *sceneStore) CountScenesByHash(ctx context.Context, hash string) (int, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM scenes WHERE content_hash = ?", hash,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting scenes by hash: %w", err)
	}
	return count, nil
}

// ResolveSeries returns the series with the given name, creating it if
// missing.
func (s *sceneStore) ResolveSeries(ctx context.Context, name string) (*domain.Series, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}

	// Insert-if-missing first so concurrent resolvers converge on one row.
	if _, err := s.store.db.ExecContext(ctx, `
		INSERT INTO series (id, name) VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING
	`, uuid.NewString(), name); err != nil {
		return nil, fmt.Errorf("creating series: %w", err)
	}

	var series domain.Series
	var createdAt sql.NullTime
	err := s.store.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM series WHERE name = ?", name,
	).Scan(&series.ID, &series.Name, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("querying series: %w", err)
	}
	if createdAt.Valid {
		series.CreatedAt = createdAt.Time
	}

	return &series, nil
}

// SearchCharacters returns characters whose normalised name or recorded
// aliases contain any of the given terms.
func (s *sceneStore) SearchCharacters(ctx context.Context, terms []string) ([]domain.Character, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	clauses := make([]string, len(terms))
	var args []any
	for i, term := range terms {
		clauses[i] = "(instr(normalized_name, ?) > 0 OR instr(LOWER(aliases), ?) > 0)"
		t := strings.ToLower(strings.TrimSpace(term))
		args = append(args, t, t)
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, series_id, name, normalized_name, aliases
		FROM characters
		WHERE `+strings.Join(clauses, " OR ")+`
		ORDER BY normalized_name
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying characters: %w", err)
	}
	defer rows.Close()

	var characters []domain.Character //nolint:prealloc // size unknown from query
	for rows.Next() {
		var c domain.Character
		var aliasesJSON string
		if err := rows.Scan(&c.ID, &c.SeriesID, &c.Name, &c.NormalizedName, &aliasesJSON); err != nil {
			return nil, fmt.Errorf("scanning character: %w", err)
		}
		if aliasesJSON != "" {
			if err := json.Unmarshal([]byte(aliasesJSON), &c.Aliases); err != nil {
				return nil, fmt.Errorf("unmarshaling aliases: %w", err)
			}
		}
		characters = append(characters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating characters: %w", err)
	}

	return characters, nil
}

// CharacterLineCounts returns dialogue line counts per normalised name
// for a series.
func (s *sceneStore) CharacterLineCounts(ctx context.Context, seriesID string) (map[string]int, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT d.normalized_character, COUNT(*)
		FROM dialogue_lines d
		JOIN scenes s ON s.id = d.scene_id
		JOIN scripts sc ON sc.id = s.script_id
		WHERE sc.series_id = ? AND d.normalized_character != ''
		GROUP BY d.normalized_character
	`, seriesID)
	if err != nil {
		return nil, fmt.Errorf("querying line counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("scanning line count: %w", err)
		}
		counts[name] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating line counts: %w", err)
	}

	return counts, nil
}

// hydrateSpeakers fills each candidate's distinct speaker list in one
// query over all scene ids.
func (s *sceneStore) hydrateSpeakers(ctx context.Context, candidates []domain.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}

	placeholders := make([]string, len(candidates))
	args := make([]any, len(candidates))
	index := make(map[int64]int, len(candidates))
	for i := range candidates {
		placeholders[i] = "?"
		args[i] = candidates[i].SceneID
		index[candidates[i].SceneID] = i
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT scene_id, character_name, normalized_character
		FROM dialogue_lines
		WHERE scene_id IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY scene_id, position
	`, args...)
	if err != nil {
		return fmt.Errorf("querying speakers: %w", err)
	}
	defer rows.Close()

	seen := make(map[int64]map[string]bool)
	for rows.Next() {
		var sceneID int64
		var name, normalized string
		if err := rows.Scan(&sceneID, &name, &normalized); err != nil {
			return fmt.Errorf("scanning speaker: %w", err)
		}
		if normalized == "" {
			continue
		}
		if seen[sceneID] == nil {
			seen[sceneID] = make(map[string]bool)
		}
		if seen[sceneID][normalized] {
			continue
		}
		seen[sceneID][normalized] = true
		i := index[sceneID]
		candidates[i].Speakers = append(candidates[i].Speakers, name)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating speakers: %w", err)
	}

	return nil
}

// scanCandidates scans candidate rows sharing the candidateColumns list.
func scanCandidates(rows *sql.Rows) ([]domain.Candidate, error) {
	var candidates []domain.Candidate //nolint:prealloc // size unknown from query
	for rows.Next() {
		var c domain.Candidate
		var sceneType string
		if err := rows.Scan(
			&c.SceneID, &c.ContentHash,
			&c.ScriptID, &c.ScriptPath, &c.ScriptTitle, &c.ScriptOrder,
			&c.SceneNumber, &sceneType, &c.Location, &c.TimeOfDay, &c.ActionText,
			&c.DialogueText, &c.Season, &c.Episode,
		); err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		c.SceneType = domain.SceneType(sceneType)
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating candidates: %w", err)
	}
	return candidates, nil
}

// buildMatch renders the query's text criteria as an FTS5 match
// expression. Terms are quoted so query punctuation cannot change the
// expression structure.
func buildMatch(q domain.SearchQuery) string {
	var parts []string //nolint:prealloc // depends on which fields are set
	for _, term := range domain.Terms(q.Text) {
		parts = append(parts, `{action dialogue} : "`+ftsEscape(term)+`"`)
	}
	if q.DialogueText != "" {
		parts = append(parts, `dialogue : "`+ftsEscape(q.DialogueText)+`"`)
	}
	if q.ActionText != "" {
		parts = append(parts, `action : "`+ftsEscape(q.ActionText)+`"`)
	}
	return strings.Join(parts, " AND ")
}

// ftsEscape doubles embedded quotes per FTS5 string syntax.
func ftsEscape(s string) string {
	return strings.ReplaceAll(s, `"`, `""`)
}

// nullString converts an empty string to NULL for nullable columns.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
