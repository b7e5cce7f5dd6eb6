package models

// Results is the output tree of a run: origin URL, then surface, then the
// findings confirmed for that pair.
type Results map[string]map[Surface][]Finding

// NewResults returns an empty tree.
func NewResults() Results {
	return make(Results)
}

// Add appends a finding under its URL and surface.
func (r Results) Add(f Finding) {
	bySurface, ok := r[f.URL]
	if !ok {
		bySurface = make(map[Surface][]Finding)
		r[f.URL] = bySurface
	}
	bySurface[f.Surface] = append(bySurface[f.Surface], f)
}

// Merge folds another tree into this one.
func (r Results) Merge(other Results) {
	for _, bySurface := range other {
		for _, findings := range bySurface {
			for _, f := range findings {
				r.Add(f)
			}
		}
	}
}

// Total counts all findings in the tree.
func (r Results) Total() int {
	n := 0
	for _, bySurface := range r {
		for _, findings := range bySurface {
			n += len(findings)
		}
	}
	return n
}
