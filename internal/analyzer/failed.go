package analyzer

// StudentsWhoFailed returns the students with at least one assessed score
// below the pass threshold, in order of first occurrence. Scores equal to
// the sentinel are not assessed and never fail.
func (a *Analyzer) StudentsWhoFailed() []string {
	seen := make(map[string]struct{})
	failed := []string{}
	for _, r := range a.records {
		if _, ok := seen[r.Student]; ok {
			continue
		}
		for _, c := range a.columns {
			v, ok := r.Scores[c]
			if ok && v > a.opts.SentinelScore && v < a.opts.PassThreshold {
				seen[r.Student] = struct{}{}
				failed = append(failed, r.Student)
				break
			}
		}
	}
	return failed
}
