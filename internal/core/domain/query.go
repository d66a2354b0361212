package domain

import "strings"

// queryAliases rewrites known misspellings to the name the upstream service
// resolves. Keys and values are already in normalized (lowercase) form.
var queryAliases = map[string]string{
	"banglore": "bangalore",
}

// NormalizeQuery canonicalizes raw user input into the lookup key sent
// upstream: surrounding whitespace is trimmed, the result is lowercased,
// and entries found in the alias table are rewritten. An input that is
// empty after trimming yields an EMPTY_QUERY error and must not be
// dispatched.
func NormalizeQuery(raw string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(raw))

	if key == "" {
		return "", &WeatherError{
			Code:    ErrCodeEmptyQuery,
			Message: "location query must not be empty",
		}
	}

	if alias, ok := queryAliases[key]; ok {
		return alias, nil
	}

	return key, nil
}
