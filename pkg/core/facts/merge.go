package facts

// Merge collapses facts into one series with at most one fact per period key.
//
// All inputs are treated equally regardless of argument order. Within a key the
// fact with the latest Filed date wins; on an exact tie the fact covering the
// longer span wins, otherwise the first one seen is kept. The result keeps the
// order in which keys were first seen.
func Merge(groups ...[]Fact) Series {
	index := make(map[PeriodKey]int)
	var out Series

	for _, group := range groups {
		for _, f := range group {
			key := f.Key()
			i, ok := index[key]
			if !ok {
				index[key] = len(out)
				out = append(out, f)
				continue
			}
			existing := out[i]
			if f.Filed.After(existing.Filed) {
				out[i] = f
				continue
			}
			if f.Filed.Equal(existing.Filed) && longerSpan(f, existing) {
				out[i] = f
			}
		}
	}

	return out
}

// MergeConcepts collects the facts of every alias for unit and merges them.
// Aliases missing from src contribute nothing.
func MergeConcepts(src Source, aliases []string, unit Unit) Series {
	if src == nil {
		return nil
	}
	groups := make([][]Fact, 0, len(aliases))
	for _, alias := range aliases {
		if values := src.Facts(alias, unit); len(values) > 0 {
			groups = append(groups, values)
		}
	}
	return Merge(groups...)
}
