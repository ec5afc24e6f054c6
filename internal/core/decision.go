package core

import "sort"

// BuildDeletionSet applies the retention policy to grouped records and
// returns the ids to delete. Deterministic and idempotent: the same
// catalog and policy always yield the same set.
//
// Per conversation:
//  1. sort newest-first (stable, so timestamp ties keep the store's
//     native order);
//  2. keep the newest message, mark the rest;
//  3. if DeleteOlderThan is set, additionally mark anything strictly
//     older than the cutoff, the sole survivor included;
//  4. remove anything whose categories match the keep pattern —
//     exemption always wins.
func BuildDeletionSet(groups map[string][]MessageRecord, policy *RetentionPolicy) DeletionSet {
	set := make(DeletionSet)
	for _, msgs := range groups {
		if len(msgs) == 0 {
			continue
		}
		sorted := make([]MessageRecord, len(msgs))
		copy(sorted, msgs)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].CreationTime.After(sorted[j].CreationTime)
		})

		for _, m := range sorted[1:] {
			set[m.ID] = struct{}{}
		}
		if policy != nil && policy.DeleteOlderThan != nil {
			cutoff := *policy.DeleteOlderThan
			for _, m := range sorted {
				if m.CreationTime.Before(cutoff) {
					set[m.ID] = struct{}{}
				}
			}
		}
		for _, m := range sorted {
			if policy.IsExempt(m.Categories) {
				delete(set, m.ID)
			}
		}
	}
	return set
}
