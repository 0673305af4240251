package compiler

// suggest returns up to max candidates from the known list whose edit
// distance to typeID is smallest, for REGISTRY_MISS's "did you mean"
// hint — grounded on the teacher's fuzzy "did you mean" helpers in the
// CLI's list/get commands, generalized into a small standalone
// Levenshtein-distance ranking since the teacher's own helper is tied to
// its own resource-kind strings.
func suggest(typeID string, known []string, max int) []string {
	type scored struct {
		name string
		dist int
	}
	scoredAll := make([]scored, 0, len(known))
	for _, k := range known {
		scoredAll = append(scoredAll, scored{name: k, dist: levenshtein(typeID, k)})
	}

	// simple insertion sort by distance; known lists are small (registry
	// catalogs, not corpora) so O(n^2) is the right amount of machinery.
	for i := 1; i < len(scoredAll); i++ {
		for j := i; j > 0 && scoredAll[j].dist < scoredAll[j-1].dist; j-- {
			scoredAll[j], scoredAll[j-1] = scoredAll[j-1], scoredAll[j]
		}
	}

	if max > len(scoredAll) {
		max = len(scoredAll)
	}
	out := make([]string, 0, max)
	for i := 0; i < max; i++ {
		out = append(out, scoredAll[i].name)
	}
	return out
}

// levenshtein computes the classic edit distance between a and b.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min3(del, ins, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
