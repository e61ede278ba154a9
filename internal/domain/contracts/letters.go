package contracts

// BreakoutSuffix converts a zero-based per-mod sequence number into the
// letter suffix used in breakout ids: 0..25 -> A..Z, 26 -> AA, and so on.
// The sequence is monotonic per mod, so a deleted breakout's id is never
// reissued.
func BreakoutSuffix(seq int) string {
	if seq < 0 {
		seq = 0
	}
	suffix := ""
	for {
		suffix = string(rune('A'+seq%26)) + suffix
		seq = seq/26 - 1
		if seq < 0 {
			break
		}
	}
	return suffix
}
