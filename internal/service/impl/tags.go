package impl

import (
	"context"
	"strings"

	"defecttracker/internal/store"
)

// attachTags links the named tags to a defect. Names are trimmed and
// deduplicated, and names missing from the tag directory are skipped.
func attachTags(ctx context.Context, tx *store.Store, defectID int64, names []string) error {
	names = dedupeNames(names)
	if len(names) == 0 {
		return nil
	}
	tags, err := tx.Tags().FindByNames(ctx, names)
	if err != nil {
		return err
	}
	seen := make(map[int64]struct{}, len(tags))
	ids := make([]int64, 0, len(tags))
	for _, t := range tags {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		ids = append(ids, t.ID)
	}
	return tx.Tags().Attach(ctx, defectID, ids)
}

func dedupeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
