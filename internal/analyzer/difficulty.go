package analyzer

var difficultyRank = map[Difficulty]int{Easy: 0, Medium: 1, Hard: 2}

// ClassifyDifficulty returns the hardest of three sub-scores: distance, total
// climbing and average steepness (meters climbed per kilometer).
func ClassifyDifficulty(distanceKm, elevationM float64) Difficulty {
	steepness := 0.0
	if distanceKm > 0 {
		steepness = elevationM / distanceKm
	}
	return hardest(
		bucket(distanceKm, 40, 80),
		bucket(elevationM, 500, 1200),
		bucket(steepness, 15, 25),
	)
}

// Harder reports whether d ranks above other.
func (d Difficulty) Harder(other Difficulty) bool {
	return difficultyRank[d] > difficultyRank[other]
}

// bucket maps v to easy below lo, hard above hi and medium in [lo, hi].
func bucket(v, lo, hi float64) Difficulty {
	switch {
	case v < lo:
		return Easy
	case v <= hi:
		return Medium
	default:
		return Hard
	}
}

func hardest(scores ...Difficulty) Difficulty {
	out := Easy
	for _, s := range scores {
		if s.Harder(out) {
			out = s
		}
	}
	return out
}
