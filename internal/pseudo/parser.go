package pseudo

import (
	"regexp"
	"strings"
)

// Candidate is one parsed event concept from generated text.
type Candidate struct {
	Title       string
	Description string
}

var (
	numberedLine = regexp.MustCompile(`^\s*\d+[.)]\s*`)
	bulletLine   = regexp.MustCompile(`^\s*[-*]\s+`)
)

// ParseCandidates turns a generated list of event concepts into structured
// candidates. The model is asked for numbered "Title - Description" lines but
// real output drifts: numbering goes missing, bullets appear, whole lines come
// back as prose. All of that parses; only blank input yields nothing.
func ParseCandidates(raw string) []Candidate {
	var candidates []Candidate
	for _, line := range strings.Split(raw, "\n") {
		line = stripListMarker(line)
		if line == "" {
			continue
		}

		title, description := splitTitleDash(line)
		if title == "" {
			title = ExtractTitle(line)
			description = line
		}
		candidates = append(candidates, Candidate{Title: title, Description: description})
	}
	return candidates
}

// ParseVenueTypes reads one venue-type line per event from generated text,
// tolerating the same numbering drift as ParseCandidates. Events beyond the
// lines actually produced get the fallback.
func ParseVenueTypes(raw string, n int, fallback string) []string {
	var parsed []string
	for _, line := range strings.Split(raw, "\n") {
		line = stripListMarker(line)
		if line == "" {
			continue
		}
		parsed = append(parsed, line)
	}

	venueTypes := make([]string, n)
	for i := range venueTypes {
		if i < len(parsed) {
			venueTypes[i] = parsed[i]
		} else {
			venueTypes[i] = fallback
		}
	}
	return venueTypes
}

// ExtractTitle derives a title from a free-form description. A
// "Title - Description" dash pattern wins; a short line without an internal
// period is already a title; otherwise the first sentence serves.
func ExtractTitle(description string) string {
	description = strings.TrimSpace(description)
	if title, _ := splitTitleDash(description); title != "" {
		return title
	}
	if len(description) < 100 && !strings.Contains(strings.TrimSuffix(description, "."), ".") {
		return strings.TrimSuffix(description, ".")
	}
	if idx := strings.Index(description, "."); idx > 0 {
		return strings.TrimSpace(description[:idx])
	}
	return description
}

// splitTitleDash splits a "Title - Description" line, returning empty strings
// when the line has no dash separator or the part before it is too long to be
// a title.
func splitTitleDash(line string) (string, string) {
	for _, sep := range []string{" - ", " – ", ": "} {
		if idx := strings.Index(line, sep); idx > 0 {
			title := strings.TrimSpace(line[:idx])
			description := strings.TrimSpace(line[idx+len(sep):])
			if title != "" && len(title) < 100 && description != "" {
				return title, description
			}
		}
	}
	return "", ""
}

func stripListMarker(line string) string {
	line = strings.TrimSpace(line)
	line = numberedLine.ReplaceAllString(line, "")
	line = bulletLine.ReplaceAllString(line, "")
	return strings.TrimSpace(strings.Trim(line, `"`))
}
