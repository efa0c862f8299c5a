// Package flags derives 0/1 indicator tables from cleaned game tables.
// Every generator returns a new table holding the key columns followed by
// its flags; input tables are never modified.
package flags

import (
	"regexp"
	"strings"

	"gamefeatures/internal/table"
)

// Keys names the identity columns copied into every flag table.
type Keys struct {
	ID   string
	Name string
}

var DefaultKeys = Keys{ID: "rawg_id", Name: "game_name"}

const (
	PlatformsColumn = "platforms_list"
	GenresColumn    = "genres_list"
	StoresColumn    = "store_list"
	TagsColumn      = "tags_list"
	ESRBColumn      = "esrb_rating_list"
	RatingColumn    = "user_rating"
)

func (k Keys) base(t table.Table) table.Table {
	return t.Select(k.ID, k.Name)
}

// splitList splits a list-string on ", " and drops blank segments. Non
// string cells yield nothing.
func splitList(v any) []string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ", ") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	return strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(s), "_"), "_")
}

// NormalizeStore maps a store name to its indicator bucket. Every Xbox and
// PlayStation storefront collapses into one bucket each.
func NormalizeStore(name string) string {
	s := strings.ToLower(name)
	switch {
	case strings.Contains(s, "xbox"):
		return "xbox_store"
	case strings.Contains(s, "playstation"):
		return "playstation_store"
	}
	return slug(s)
}

func genreToken(genre string) string {
	return strings.ReplaceAll(strings.ToLower(genre), " ", "_")
}

// NormalizeTag maps a tag to its indicator token, folding the usual
// spellings of co-op, singleplayer and multiplayer together.
func NormalizeTag(tag string) string {
	s := strings.ToLower(strings.TrimSpace(tag))
	switch s {
	case "cooperative", "coop", "co-op":
		return "co_op"
	case "singleplayer", "single-player":
		return "singleplayer"
	case "multiplayer", "multi-player":
		return "multiplayer"
	}
	return slug(s)
}
