package cache

import "fmt"

// Key namespace for all cache entries.
const keyPrefix = "hn"

// ItemKey returns the deterministic cache key for one item.
// Format: hn:item:<id>
func ItemKey(id int64) string {
	return fmt.Sprintf("%s:item:%d", keyPrefix, id)
}

// ListKey returns the deterministic cache key for one ID ranking.
// Format: hn:list:<name>
func ListKey(list string) string {
	return fmt.Sprintf("%s:list:%s", keyPrefix, list)
}
