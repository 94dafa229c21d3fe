package docs

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// ComputeDocsHash computes a deterministic hash over a set of documents.
// It changes whenever a document is added, removed, renamed, edited, or
// gets new last-update data, so consumers can detect stale snapshots.
func ComputeDocsHash(docs []Doc) string {
	if len(docs) == 0 {
		h := sha256.Sum256([]byte("empty-docs-set"))
		return hex.EncodeToString(h[:])
	}

	sorted := make([]Doc, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Source < sorted[j].Source })

	h := sha256.New()
	for _, d := range sorted {
		_, _ = fmt.Fprintf(h, "%s|%s|%s|%s|%d\n", d.ID, d.Source, d.Fingerprint, d.LastUpdatedBy, d.LastUpdatedAt)
	}
	return hex.EncodeToString(h.Sum(nil))
}
