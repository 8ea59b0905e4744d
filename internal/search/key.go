package search

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Key builds the cache key for a search: the query is trimmed and
// lowercased, the filter set serialized canonically, and the semantic flag
// included, so queries differing only in case or surrounding whitespace
// share an entry while any filter or mode change misses.
func Key(query string, semantic bool, filters Filters) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	payload := fmt.Sprintf("q=%s|semantic=%t|%s", normalized, semantic, filters.Canonical())
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
