package store

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// EmotionGroups maps a canonical emotion category to the synonym set the
// annotation stage may have used for it. Matching is always done against
// the whole group because upstream labels are not canonical.
type EmotionGroups map[string][]string

type emotionGroupsFile struct {
	Version int                 `yaml:"version"`
	Groups  map[string][]string `yaml:"groups"`
}

// DefaultEmotionGroups returns the built-in synonym groups.
func DefaultEmotionGroups() EmotionGroups {
	return EmotionGroups{
		"frustration": {"frustration", "annoyed", "irritated", "angry", "upset"},
		"positive":    {"joy", "happiness", "excited", "satisfied", "pleased", "admiration"},
		"innovation":  {"creative", "innovative", "novel", "new idea", "improvement"},
		"negative":    {"sad", "disappointed", "unhappy", "frustrated", "confused"},
		"neutral":     {"neutral", "calm", "balanced"},
	}
}

// LoadEmotionGroups loads synonym groups from a YAML file, falling back
// to the built-in defaults when the path is empty or the file is absent.
func LoadEmotionGroups(path string) (EmotionGroups, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultEmotionGroups(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultEmotionGroups(), nil
		}
		return nil, fmt.Errorf("read emotion groups file: %w", err)
	}

	var file emotionGroupsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse emotion groups file: %w", err)
	}
	if len(file.Groups) == 0 {
		return DefaultEmotionGroups(), nil
	}

	groups := make(EmotionGroups, len(file.Groups))
	for category, members := range file.Groups {
		cleaned := make([]string, 0, len(members))
		for _, m := range members {
			m = strings.ToLower(strings.TrimSpace(m))
			if m != "" {
				cleaned = append(cleaned, m)
			}
		}
		groups[strings.ToLower(category)] = cleaned
	}
	return groups, nil
}

// Normalize maps an emotion label to its full synonym group. The
// category name is part of the matched set, so chunks labeled with the
// bare category match queries for any of its members and vice versa.
// Labels not in any group come back as a singleton set.
func (g EmotionGroups) Normalize(emotion string) map[string]bool {
	emotion = strings.ToLower(strings.TrimSpace(emotion))

	categories := make([]string, 0, len(g))
	for category := range g {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		members := g[category]
		if emotion != category && !containsLabel(members, emotion) {
			continue
		}
		set := toSet(members)
		set[category] = true
		return set
	}
	return map[string]bool{emotion: true}
}

func containsLabel(members []string, label string) bool {
	for _, m := range members {
		if m == label {
			return true
		}
	}
	return false
}

// Criteria is a non-persisted filter derived from a free-text query.
type Criteria struct {
	Emotions  map[string]bool
	Themes    map[string]bool
	Sentiment string
}

// Empty reports whether the criteria constrain nothing.
func (c Criteria) Empty() bool {
	return len(c.Emotions) == 0 && len(c.Themes) == 0 && c.Sentiment == ""
}

// ExtractCriteria derives emotion and theme filters from query keywords.
func (g EmotionGroups) ExtractCriteria(query string) Criteria {
	query = strings.ToLower(query)
	criteria := Criteria{
		Emotions: make(map[string]bool),
		Themes:   make(map[string]bool),
	}

	if containsAny(query, "frustration", "frustrated", "annoying", "annoyed") {
		g.addGroup(criteria.Emotions, "frustration")
	}
	if containsAny(query, "positive", "happy", "good", "great") {
		g.addGroup(criteria.Emotions, "positive")
	}
	if containsAny(query, "negative", "bad", "poor", "pain", "painful") {
		g.addGroup(criteria.Emotions, "negative")
		criteria.Sentiment = "negative"
	}

	if strings.Contains(query, "innovation") || strings.Contains(query, "innovative") {
		criteria.Themes["innovation"] = true
	}
	if strings.Contains(query, "team") {
		criteria.Themes["team dynamics"] = true
	}

	return criteria
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// addGroup adds a category's members plus the category name itself.
func (g EmotionGroups) addGroup(set map[string]bool, category string) {
	for _, m := range g[category] {
		set[m] = true
	}
	set[category] = true
}

func toSet(members []string) map[string]bool {
	set := make(map[string]bool, len(members))
	for _, m := range members {
		set[m] = true
	}
	return set
}
