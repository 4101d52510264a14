package recurse

// TrackNumbers maps each track identifier to a 1-based number assigned in order
// of first appearance.
func TrackNumbers(trackIDs []string) []int {
	mapping := make(map[string]int)
	numbers := make([]int, len(trackIDs))
	next := 1

	for i, id := range trackIDs {
		n, ok := mapping[id]
		if !ok {
			n = next
			mapping[id] = n
			next++
		}
		numbers[i] = n
	}
	return numbers
}

// TrackStarts flags the samples that begin a new track. The first sample is
// always a track start; any later sample whose track differs from its
// predecessor's starts another one.
func TrackStarts(trackIDs []string) []bool {
	numbers := TrackNumbers(trackIDs)
	starts := make([]bool, len(numbers))
	for i := range numbers {
		starts[i] = i == 0 || numbers[i] != numbers[i-1]
	}
	return starts
}

func sampleTrackIDs(samples []Sample) []string {
	ids := make([]string, len(samples))
	for i, s := range samples {
		ids[i] = s.TrackID
	}
	return ids
}
