package streaming

// SelectLOD maps a viewer distance to a tier index. Thresholds are ascending
// and half-open: a distance equal to thresholds[i] already belongs to tier i+1.
// The result is clamped to the tiers the chunk actually has.
func SelectLOD(distance float32, thresholds []float32, tierCount int) int {
	tier := 0
	for _, th := range thresholds {
		if distance < th {
			break
		}
		tier++
	}
	if tier > tierCount-1 {
		tier = tierCount - 1
	}
	return max(tier, 0)
}
