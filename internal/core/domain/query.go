package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Query syntax:
//
//	free text            matched against action and dialogue
//	dialogue:"..."       dialogue-scoped phrase
//	action:"..."         action-scoped phrase
//	character:NAME       speaker filter (repeatable)
//	location:NAME        location filter (repeatable)
//	time:NAME            time-of-day filter (repeatable)
//	s1e2 / s1e2-s2e5     episode or inclusive episode range
var (
	scopedRe  = regexp.MustCompile(`(dialogue|action):"([^"]*)"`)
	fieldRe   = regexp.MustCompile(`(character|location|time):(\S+)`)
	episodeRe = regexp.MustCompile(`^s(\d+)e(\d+)(?:-s(\d+)e(\d+))?$`)
)

// ParseQuery parses the textual query surface into a SearchQuery.
// Unrecognised tokens are treated as free text.
func ParseQuery(input string) (SearchQuery, error) {
	var q SearchQuery

	// Quoted scoped phrases first, so their contents are not re-tokenised.
	input = scopedRe.ReplaceAllStringFunc(input, func(m string) string {
		parts := scopedRe.FindStringSubmatch(m)
		switch parts[1] {
		case "dialogue":
			q.DialogueText = parts[2]
		case "action":
			q.ActionText = parts[2]
		}
		return " "
	})

	input = fieldRe.ReplaceAllStringFunc(input, func(m string) string {
		parts := fieldRe.FindStringSubmatch(m)
		value := strings.ReplaceAll(parts[2], "_", " ")
		switch parts[1] {
		case "character":
			q.Characters = append(q.Characters, value)
		case "location":
			q.Locations = append(q.Locations, value)
		case "time":
			q.TimesOfDay = append(q.TimesOfDay, value)
		}
		return " "
	})

	var free []string
	for _, tok := range strings.Fields(input) {
		if m := episodeRe.FindStringSubmatch(strings.ToLower(tok)); m != nil {
			r, err := parseEpisodeRange(m)
			if err != nil {
				return q, err
			}
			q.Episodes = r
			continue
		}
		free = append(free, tok)
	}
	q.Text = strings.Join(free, " ")

	return q, nil
}

func parseEpisodeRange(m []string) (*EpisodeRange, error) {
	from, err := episodeRef(m[1], m[2])
	if err != nil {
		return nil, err
	}
	to := from
	if m[3] != "" {
		to, err = episodeRef(m[3], m[4])
		if err != nil {
			return nil, err
		}
	}
	if to.Ordinal() < from.Ordinal() {
		return nil, fmt.Errorf("%w: episode range is inverted", ErrInvalidQuery)
	}
	return &EpisodeRange{From: from, To: to}, nil
}

func episodeRef(season, episode string) (EpisodeRef, error) {
	s, err := strconv.Atoi(season)
	if err != nil {
		return EpisodeRef{}, fmt.Errorf("%w: season %q", ErrInvalidQuery, season)
	}
	e, err := strconv.Atoi(episode)
	if err != nil {
		return EpisodeRef{}, fmt.Errorf("%w: episode %q", ErrInvalidQuery, episode)
	}
	return EpisodeRef{Season: s, Episode: e}, nil
}

// Terms splits free text into lowercase search terms.
func Terms(text string) []string {
	return strings.Fields(strings.ToLower(text))
}
