package app

import (
	"encoding/hex"
	"fmt"

	"github.com/minio/highwayhash"
)

// datasetHashKey is the fixed key used for content hashing, so the same
// bytes always produce the same hash across restarts. View cache keys are
// derived from these hashes.
var datasetHashKey = []byte("crateview hash key\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00")

// HashBytes returns the HighwayHash of data as a hex string.
func HashBytes(data []byte) (string, error) {
	h, err := highwayhash.New(datasetHashKey)
	if err != nil {
		return "", fmt.Errorf("failed to create hash: %w", err)
	}
	if _, err := h.Write(data); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
