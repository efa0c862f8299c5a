package flags

import (
	"slices"
	"strings"

	"gamefeatures/internal/table"
)

// Category is one indicator column and the raw values that feed it.
type Category struct {
	Column string
	Values []string
}

// Vocabulary is the ordered set of indicator columns found in a table.
type Vocabulary []Category

func (v Vocabulary) Columns() []string {
	out := make([]string, len(v))
	for i, c := range v {
		out[i] = c.Column
	}
	return out
}

// DiscoverOptions controls how list values turn into indicator columns.
type DiscoverOptions struct {
	Prefix string
	Token  func(string) string
	// Sorted orders categories by column name instead of first appearance.
	Sorted bool
}

// DiscoverVocabulary scans every list-string of col and returns one
// category per distinct token. Values whose token is empty are skipped.
func DiscoverVocabulary(t table.Table, col string, opts DiscoverOptions) Vocabulary {
	var vocab Vocabulary
	index := map[string]int{}
	for _, r := range t.Rows {
		for _, value := range splitList(r[col]) {
			token := opts.Token(value)
			if token == "" {
				continue
			}
			name := opts.Prefix + token
			i, seen := index[name]
			if !seen {
				index[name] = len(vocab)
				vocab = append(vocab, Category{Column: name, Values: []string{value}})
				continue
			}
			if !slices.Contains(vocab[i].Values, value) {
				vocab[i].Values = append(vocab[i].Values, value)
			}
		}
	}
	if opts.Sorted {
		slices.SortFunc(vocab, func(a, b Category) int {
			return strings.Compare(a.Column, b.Column)
		})
	}
	return vocab
}

// Matcher decides whether a cell belongs to a category.
type Matcher func(cell any, c Category) bool

// EncodeIndicators builds the fixed-schema indicator table for vocab.
func EncodeIndicators(t table.Table, keys Keys, col string, vocab Vocabulary, match Matcher) table.Table {
	out := keys.base(t)
	for _, c := range vocab {
		out.AddColumn(c.Column)
	}
	for i, r := range t.Rows {
		for _, c := range vocab {
			out.Rows[i][c.Column] = table.Bit(match(r[col], c))
		}
	}
	return out
}

// ContainsAny matches when the cell text holds any category value as a
// literal substring.
func ContainsAny(cell any, c Category) bool {
	s, ok := cell.(string)
	if !ok {
		return false
	}
	for _, v := range c.Values {
		if strings.Contains(s, v) {
			return true
		}
	}
	return false
}

// TokenMatch matches when any list segment of the cell normalizes to the
// category column.
func TokenMatch(prefix string, token func(string) string) Matcher {
	return func(cell any, c Category) bool {
		for _, v := range splitList(cell) {
			if prefix+token(v) == c.Column {
				return true
			}
		}
		return false
	}
}

var (
	GenreVocabulary = DiscoverOptions{Prefix: "is_", Token: genreToken}
	StoreVocabulary = DiscoverOptions{Prefix: "store_", Token: NormalizeStore, Sorted: true}
	TagVocabulary   = DiscoverOptions{Prefix: "tag_", Token: NormalizeTag, Sorted: true}
	ESRBVocabulary  = DiscoverOptions{Prefix: "esrb_", Token: NormalizeTag}
)

// Genres emits one is_<genre> column per genre present in the table.
func Genres(t table.Table, keys Keys) table.Table {
	vocab := DiscoverVocabulary(t, GenresColumn, GenreVocabulary)
	return EncodeIndicators(t, keys, GenresColumn, vocab, ContainsAny)
}

// Stores emits one store_<bucket> column per normalized store bucket.
func Stores(t table.Table, keys Keys) table.Table {
	vocab := DiscoverVocabulary(t, StoresColumn, StoreVocabulary)
	return EncodeIndicators(t, keys, StoresColumn, vocab, TokenMatch(StoreVocabulary.Prefix, NormalizeStore))
}

func Tags(t table.Table, keys Keys) table.Table {
	vocab := DiscoverVocabulary(t, TagsColumn, TagVocabulary)
	return EncodeIndicators(t, keys, TagsColumn, vocab, TokenMatch(TagVocabulary.Prefix, NormalizeTag))
}

// ESRB emits one esrb_<rating> column per rating, matched on the whole
// value rather than list segments.
func ESRB(t table.Table, keys Keys) table.Table {
	vocab := DiscoverVocabulary(t, ESRBColumn, ESRBVocabulary)
	return EncodeIndicators(t, keys, ESRBColumn, vocab, func(cell any, c Category) bool {
		s, ok := cell.(string)
		return ok && slices.Contains(c.Values, s)
	})
}
