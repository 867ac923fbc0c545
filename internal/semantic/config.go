// Questline - Semantic Game Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/questline

package semantic

// Category names shared with the catalog store and the vector payload.
const (
	CategoryGenre       = "genre"
	CategoryPlatform    = "platform"
	CategoryGameMode    = "game_mode"
	CategoryPerspective = "player_perspective"
)

// Categories lists the catalog categories in a stable order.
var Categories = []string{CategoryGenre, CategoryPlatform, CategoryGameMode, CategoryPerspective}

// CategoryMapping holds the semantic keywords associated with one genre,
// platform, game mode or perspective. The six core lists drive embedding
// injection; the extended lists enrich combinations and query enhancement.
type CategoryMapping struct {
	GenreKeywords    []string `json:"genreKeywords"`
	MechanicKeywords []string `json:"mechanicKeywords"`
	ThemeKeywords    []string `json:"themeKeywords"`
	MoodKeywords     []string `json:"moodKeywords"`
	ArtStyleKeywords []string `json:"artStyleKeywords"`
	AudienceKeywords []string `json:"audienceKeywords"`

	PlatformTypeKeywords      []string `json:"platformTypeKeywords,omitempty"`
	EraKeywords               []string `json:"eraKeywords,omitempty"`
	CapabilityKeywords        []string `json:"capabilityKeywords,omitempty"`
	PlayerInteractionKeywords []string `json:"playerInteractionKeywords,omitempty"`
	ScaleKeywords             []string `json:"scaleKeywords,omitempty"`
	CommunicationKeywords     []string `json:"communicationKeywords,omitempty"`
	ViewpointKeywords         []string `json:"viewpointKeywords,omitempty"`
	ImmersionKeywords         []string `json:"immersionKeywords,omitempty"`
	InterfaceKeywords         []string `json:"interfaceKeywords,omitempty"`
}

// lists returns pointers to every keyword list in declaration order.
func (m *CategoryMapping) lists() []*[]string {
	return []*[]string{
		&m.GenreKeywords, &m.MechanicKeywords, &m.ThemeKeywords,
		&m.MoodKeywords, &m.ArtStyleKeywords, &m.AudienceKeywords,
		&m.PlatformTypeKeywords, &m.EraKeywords, &m.CapabilityKeywords,
		&m.PlayerInteractionKeywords, &m.ScaleKeywords, &m.CommunicationKeywords,
		&m.ViewpointKeywords, &m.ImmersionKeywords, &m.InterfaceKeywords,
	}
}

// KeywordCount returns the total number of keywords across all lists.
func (m *CategoryMapping) KeywordCount() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, l := range m.lists() {
		n += len(*l)
	}
	return n
}

// Merge appends keywords from src that are not already present, list by list.
func (m *CategoryMapping) Merge(src *CategoryMapping) {
	if src == nil {
		return
	}
	dst := m.lists()
	for i, l := range src.lists() {
		*dst[i] = appendUnique(*dst[i], *l...)
	}
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if !containsFold(dst, v) {
			dst = append(dst, v)
		}
	}
	return dst
}

// Weights are the per-category injection weights of game embeddings.
type Weights struct {
	Genre     float64 `json:"genreWeight"`
	Mechanics float64 `json:"mechanicsWeight"`
	Theme     float64 `json:"themeWeight"`
	Mood      float64 `json:"moodWeight"`
	ArtStyle  float64 `json:"artStyleWeight"`
	Audience  float64 `json:"audienceWeight"`
	Summary   float64 `json:"summaryWeight"`
	Storyline float64 `json:"storylineWeight"`
}

// DefaultWeights favors structured metadata over free text.
func DefaultWeights() Weights {
	return Weights{
		Genre:     0.4,
		Mechanics: 0.3,
		Theme:     0.2,
		Mood:      0.1,
		ArtStyle:  0.05,
		Audience:  0.03,
		Summary:   0.05,
		Storyline: 0.03,
	}
}

// PositionRange is a half-open [Start, End) range of embedding dimensions.
type PositionRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Size returns End - Start.
func (r PositionRange) Size() int {
	return r.End - r.Start
}

// CategoryRanges places each semantic category in the embedding vector.
type CategoryRanges struct {
	Genre     PositionRange `json:"genre"`
	Mechanics PositionRange `json:"mechanics"`
	Theme     PositionRange `json:"theme"`
	Mood      PositionRange `json:"mood"`
	ArtStyle  PositionRange `json:"artStyle"`
	Audience  PositionRange `json:"audience"`
}

// Dimensions describes the embedding layout.
type Dimensions struct {
	Total          int            `json:"total"`
	CategoryRanges CategoryRanges `json:"categoryRanges"`
}

// TotalDimensions is the length of every embedding vector.
const TotalDimensions = 384

// DefaultDimensions returns the fixed 384-dim layout.
func DefaultDimensions() Dimensions {
	return Dimensions{
		Total: TotalDimensions,
		CategoryRanges: CategoryRanges{
			Genre:     PositionRange{0, 64},
			Mechanics: PositionRange{64, 192},
			Theme:     PositionRange{192, 256},
			Mood:      PositionRange{256, 320},
			ArtStyle:  PositionRange{320, 352},
			Audience:  PositionRange{352, 384},
		},
	}
}

func (r CategoryRanges) all() []PositionRange {
	return []PositionRange{r.Genre, r.Mechanics, r.Theme, r.Mood, r.ArtStyle, r.Audience}
}

// valid reports whether every range lies inside [0, total) and none overlap.
func (d Dimensions) valid() bool {
	if d.Total != TotalDimensions {
		return false
	}
	used := make([]bool, d.Total)
	for _, r := range d.CategoryRanges.all() {
		if r.Start < 0 || r.End > d.Total || r.Size() <= 0 {
			return false
		}
		for i := r.Start; i < r.End; i++ {
			if used[i] {
				return false
			}
			used[i] = true
		}
	}
	return true
}

// KeywordConfig is the merged keyword configuration. It is read-only once
// published; a refresh replaces the whole value.
type KeywordConfig struct {
	GenreMappings       map[string]*CategoryMapping `json:"genreMappings"`
	PlatformMappings    map[string]*CategoryMapping `json:"platformMappings"`
	GameModeMappings    map[string]*CategoryMapping `json:"gameModeMappings"`
	PerspectiveMappings map[string]*CategoryMapping `json:"perspectiveMappings"`
	DefaultWeights      Weights                     `json:"defaultWeights"`
	Dimensions          Dimensions                  `json:"dimensions"`
}

// DefaultKeywordConfig returns an empty but valid configuration.
func DefaultKeywordConfig() *KeywordConfig {
	cfg := &KeywordConfig{}
	cfg.ensureDefaults()
	return cfg
}

// Mappings returns the mapping table for a category.
func (c *KeywordConfig) Mappings(category string) map[string]*CategoryMapping {
	switch category {
	case CategoryGenre:
		return c.GenreMappings
	case CategoryPlatform:
		return c.PlatformMappings
	case CategoryGameMode:
		return c.GameModeMappings
	case CategoryPerspective:
		return c.PerspectiveMappings
	}
	return nil
}

// MappingCount returns the number of entries across all categories.
func (c *KeywordConfig) MappingCount() int {
	return len(c.GenreMappings) + len(c.PlatformMappings) + len(c.GameModeMappings) + len(c.PerspectiveMappings)
}

func (c *KeywordConfig) ensureDefaults() {
	if c.GenreMappings == nil {
		c.GenreMappings = make(map[string]*CategoryMapping)
	}
	if c.PlatformMappings == nil {
		c.PlatformMappings = make(map[string]*CategoryMapping)
	}
	if c.GameModeMappings == nil {
		c.GameModeMappings = make(map[string]*CategoryMapping)
	}
	if c.PerspectiveMappings == nil {
		c.PerspectiveMappings = make(map[string]*CategoryMapping)
	}
	for _, m := range []map[string]*CategoryMapping{c.GenreMappings, c.PlatformMappings, c.GameModeMappings, c.PerspectiveMappings} {
		for k, v := range m {
			if v == nil {
				delete(m, k)
			}
		}
	}

	w := &c.DefaultWeights
	d := DefaultWeights()
	for _, p := range []struct {
		v   *float64
		def float64
	}{
		{&w.Genre, d.Genre}, {&w.Mechanics, d.Mechanics}, {&w.Theme, d.Theme},
		{&w.Mood, d.Mood}, {&w.ArtStyle, d.ArtStyle}, {&w.Audience, d.Audience},
		{&w.Summary, d.Summary}, {&w.Storyline, d.Storyline},
	} {
		if *p.v <= 0 || *p.v > 1 {
			*p.v = p.def
		}
	}

	if !c.Dimensions.valid() {
		c.Dimensions = DefaultDimensions()
	}
}

// merge overwrites entries of c with the specialized table for category.
func (c *KeywordConfig) merge(category string, specialized map[string]*CategoryMapping) {
	dst := c.Mappings(category)
	for k, v := range specialized {
		if v != nil {
			dst[k] = v
		}
	}
}
