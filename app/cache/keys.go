package cache

// BuildKey composes a cache key from a dataset content hash and a query-state
// key. Key format: "<hash>|<state>".
func BuildKey(datasetHash, stateKey string) string {
	return datasetHash + "|" + stateKey
}

// DatasetPrefix returns the key prefix covering every state for one dataset,
// for use with InvalidatePrefix.
func DatasetPrefix(datasetHash string) string {
	return datasetHash + "|"
}
