package app

import (
	"net/url"
	"strings"
)

// dbConnSettings derives the DSN to dial and the database name to tag traces
// with from the configured URL. lib/pq mishandles prepared binary results on
// some poolers, so the disable flag is appended unless the URL already sets
// it either way. A DSN that does not parse as a URL is passed through
// untouched with an empty name.
func dbConnSettings(raw string, disablePreparedBinary bool) (dsn, name string) {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return raw, ""
	}

	name = strings.TrimPrefix(parsed.Path, "/")

	if disablePreparedBinary {
		query := parsed.Query()
		if query.Get("disable_prepared_binary_result") == "" {
			query.Set("disable_prepared_binary_result", "yes")
			parsed.RawQuery = query.Encode()
		}
	}

	return parsed.String(), name
}
