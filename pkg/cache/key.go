package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Query parameter aliases that select the same upstream feature.
var (
	translationAliases  = []string{"translations", "translation_ids", "translationId"}
	wordLanguageAliases = []string{"word_translation_language", "language", "wordLang"}
)

// BuildKey generates a canonical cache key string for a request.
// Requests that only differ in alias spelling or parameter order map to the same key.
// Format: pathname|translations=t|wordLang=w|k1=v1&k2=v2
//
// Example:
//
//	/api/v4/chapters|translations=20,21|wordLang=en|page=1
func BuildKey(pathname string, query url.Values) string {
	translations := normalizeTranslations(firstPresent(query, translationAliases))
	wordLang := strings.ToLower(firstPresent(query, wordLanguageAliases))

	return fmt.Sprintf("%s|translations=%s|wordLang=%s|%s",
		pathname, translations, wordLang, otherParams(query))
}

// firstPresent returns the value of the first alias present in query.
// An alias that is present with an empty value still wins.
func firstPresent(query url.Values, aliases []string) string {
	for _, alias := range aliases {
		if _, ok := query[alias]; ok {
			return query.Get(alias)
		}
	}
	return ""
}

// normalizeTranslations trims, drops empties and sorts a comma separated id list.
// Tokens sort numerically when all of them are integers, lexically otherwise.
func normalizeTranslations(raw string) string {
	if raw == "" {
		return ""
	}

	tokens := make([]string, 0, strings.Count(raw, ",")+1)
	for _, token := range strings.Split(raw, ",") {
		if token = strings.TrimSpace(token); token != "" {
			tokens = append(tokens, token)
		}
	}

	if allIntegers(tokens) {
		sort.SliceStable(tokens, func(a, b int) bool {
			x, _ := strconv.ParseInt(tokens[a], 10, 64)
			y, _ := strconv.ParseInt(tokens[b], 10, 64)
			return x < y
		})
	} else {
		sort.Strings(tokens)
	}

	return strings.Join(tokens, ",")
}

// otherParams serializes every non-alias parameter as key=value pairs sorted by key.
// Repeated keys keep their original value order.
func otherParams(query url.Values) string {
	keys := make([]string, 0, len(query))
	for key := range query {
		if isAlias(key) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		for _, value := range query[key] {
			pairs = append(pairs, key+"="+value)
		}
	}
	return strings.Join(pairs, "&")
}

func allIntegers(tokens []string) bool {
	for _, token := range tokens {
		if _, err := strconv.ParseInt(token, 10, 64); err != nil {
			return false
		}
	}
	return true
}

func isAlias(key string) bool {
	for _, alias := range translationAliases {
		if key == alias {
			return true
		}
	}
	for _, alias := range wordLanguageAliases {
		if key == alias {
			return true
		}
	}
	return false
}
