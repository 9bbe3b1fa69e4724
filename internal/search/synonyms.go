package search

import "strings"

// triggers maps a single trigger word to the additional terms appended
// to the query text when that word appears, plus the intent tag surfaced
// to callers (e.g. so a CLI can print "interpreted as: auth").
var triggers = map[string]struct {
	tag     string
	synonym []string
}{
	"auth":   {"auth", []string{"authenticate", "authentication", "login", "token", "credential", "session"}},
	"db":     {"database", []string{"database", "datastore", "repository", "dao", "query"}},
	"config": {"config", []string{"configuration", "settings", "options", "env"}},
	"cache":  {"cache", []string{"caching", "memoize", "lru", "ttl"}},
	"error":  {"error", []string{"exception", "failure", "err"}},
	"test":   {"test", []string{"testing", "spec", "assert", "mock"}},
	"log":    {"logging", []string{"logging", "logger", "trace"}},
	"http":   {"http", []string{"request", "response", "handler", "route"}},
}

// expand scans q's words for a known trigger and, if found, appends its
// synonyms to the query text. Only the first trigger found is applied;
// a query naming several domains isn't expanded further since the
// resulting disjunction would dilute scoring rather than help it.
// Returns the original query and an empty tag when nothing matches.
func expand(q string) (string, string) {
	words := strings.Fields(strings.ToLower(q))
	for _, w := range words {
		if t, ok := triggers[w]; ok {
			return q + " " + strings.Join(t.synonym, " "), t.tag
		}
	}
	return q, ""
}
