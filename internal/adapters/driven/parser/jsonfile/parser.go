// Package jsonfile parses pre-extracted screenplay JSON documents.
//
// Screenplay grammar parsing (Fountain, FDX) happens upstream; this
// adapter consumes the structured JSON those extractors emit. One file
// holds one script with its ordered scenes and dialogue.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sluglab/slugline/internal/core/domain"
	"github.com/sluglab/slugline/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.ScriptParser = (*Parser)(nil)

// Parser reads screenplay JSON files into domain scripts.
type Parser struct{}

// NewParser creates a JSON script parser.
func NewParser() *Parser {
	return &Parser{}
}

// scriptDoc is the on-disk JSON layout.
type scriptDoc struct {
	Title   string     `json:"title"`
	Format  string     `json:"format,omitempty"`
	Series  string     `json:"series,omitempty"`
	Season  int        `json:"season,omitempty"`
	Episode int        `json:"episode,omitempty"`
	Scenes  []sceneDoc `json:"scenes"`
}

type sceneDoc struct {
	Number    int            `json:"number,omitempty"`
	Type      string         `json:"type,omitempty"`
	Location  string         `json:"location,omitempty"`
	TimeOfDay string         `json:"time_of_day,omitempty"`
	Action    string         `json:"action,omitempty"`
	Dialogue  []dialogueDoc  `json:"dialogue,omitempty"`
	Season    int            `json:"season,omitempty"`
	Episode   int            `json:"episode,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

type dialogueDoc struct {
	Character     string `json:"character"`
	Text          string `json:"text"`
	Parenthetical string `json:"parenthetical,omitempty"`
}

// Parse reads and parses the file at path.
func (p *Parser) Parse(ctx context.Context, path string) (*domain.Script, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc scriptDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing script %s: %w", path, err)
	}

	script := &domain.Script{
		FilePath:      path,
		Title:         doc.Title,
		FormatType:    formatType(doc.Format),
		SeriesName:    strings.TrimSpace(doc.Series),
		SeasonNumber:  doc.Season,
		EpisodeNumber: doc.Episode,
		Scenes:        make([]domain.Scene, 0, len(doc.Scenes)),
	}

	for i, sd := range doc.Scenes {
		number := sd.Number
		if number == 0 {
			number = i + 1
		}
		scene := domain.Scene{
			SceneNumber: number,
			SceneType:   sceneType(sd.Type),
			Location:    strings.TrimSpace(sd.Location),
			TimeOfDay:   strings.TrimSpace(sd.TimeOfDay),
			ActionText:  sd.Action,
			Season:      sd.Season,
			Episode:     sd.Episode,
			Extra:       sd.Extra,
		}
		for _, dd := range sd.Dialogue {
			scene.Dialogue = append(scene.Dialogue, domain.DialogueLine{
				CharacterName: dd.Character,
				Text:          dd.Text,
				Parenthetical: dd.Parenthetical,
			})
		}
		script.Scenes = append(script.Scenes, scene)
	}

	return script, nil
}

// formatType defaults missing format declarations to "json".
func formatType(format string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		return "json"
	}
	return format
}

// sceneType maps heading prefixes onto the two recognised types.
// "INT./EXT." combinations count as interior.
func sceneType(raw string) domain.SceneType {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(upper, "INT"):
		return domain.SceneInterior
	case strings.HasPrefix(upper, "EXT"):
		return domain.SceneExterior
	default:
		return domain.SceneType(upper)
	}
}
