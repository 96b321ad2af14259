package dataprocessing

import "scorecli/pkg/contracts/domain"

// Merge concatenates record sets. Columns are the union of every set's
// columns in first-seen order; records keep their source order.
func Merge(sets ...*domain.RecordSet) *domain.RecordSet {
	out := &domain.RecordSet{}
	for _, rs := range sets {
		if rs == nil {
			continue
		}
		for _, c := range rs.Columns {
			if !out.HasColumn(c) {
				out.Columns = append(out.Columns, c)
			}
		}
		for _, r := range rs.Records {
			out.Records = append(out.Records, r.Clone())
		}
	}
	return out
}
