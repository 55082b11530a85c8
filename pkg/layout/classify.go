package layout

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
	"github.com/praetorian-inc/posjson/pkg/types"
)

// typeKeywords lists descriptor keywords in priority order: when a type
// string contains keywords of several types, the earliest entry wins.
var typeKeywords = []struct {
	keyword string
	typ     types.SemanticType
}{
	{"decimal", types.TypeDecimal},
	{"ddmmy", types.TypeDate},
	{"date", types.TypeDate},
	{"sim", types.TypeBoolean},
	{"não", types.TypeBoolean},
	{"nao", types.TypeBoolean},
	{"inteiro", types.TypeInteger},
}

var (
	classifier     *ahocorasick.Matcher
	classifierOnce sync.Once
)

func typeMatcher() *ahocorasick.Matcher {
	classifierOnce.Do(func() {
		keywords := make([]string, len(typeKeywords))
		for i, tk := range typeKeywords {
			keywords[i] = tk.keyword
		}
		classifier = ahocorasick.NewStringMatcher(keywords)
	})
	return classifier
}

// Classify maps a free-form descriptor type string ("Decimal", "DDMMYYYY",
// "Sim/Não", "Inteiro", "Caracter", ...) to a semantic type. Matching is a
// case-insensitive substring search; anything unrecognized is character.
func Classify(raw string) types.SemanticType {
	if raw == "" {
		return types.TypeCharacter
	}
	hits := typeMatcher().MatchThreadSafe([]byte(strings.ToLower(raw)))
	if len(hits) == 0 {
		return types.TypeCharacter
	}

	best := hits[0]
	for _, hit := range hits[1:] {
		if hit < best {
			best = hit
		}
	}
	return typeKeywords[best].typ
}
