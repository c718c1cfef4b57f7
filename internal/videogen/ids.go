package videogen

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const idSuffixLength = 9

// randomSuffix returns a short lowercase alphanumeric token. Uniqueness is
// probabilistic only.
func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:idSuffixLength]
}

// artifactID joins the submission time with a random suffix, e.g.
// 1718000000000-3f9a0c1b2.
func artifactID(t time.Time, suffix func() string) string {
	return fmt.Sprintf("%d-%s", t.UnixMilli(), suffix())
}

func quotaRecordID(t time.Time) string {
	return fmt.Sprintf("%d-quota-exceeded", t.UnixMilli())
}

func videoKey(id string) string     { return id + ".mp4" }
func infoKey(id string) string      { return id + "-info.json" }
func quotaInfoKey(id string) string { return id + "-quota-info.json" }

// RecordKeys lists the storage keys that may hold the record for id, in
// lookup order.
func RecordKeys(id string) []string {
	return []string{infoKey(id), quotaInfoKey(id)}
}

// BundleKeys returns the video and sidecar keys of a materialized artifact.
func BundleKeys(id string) (video, info string) {
	return videoKey(id), infoKey(id)
}
