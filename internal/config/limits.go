package config

// Open source edition limits. The engine caps rather than rejects, logging a
// warning, so oversized configs still produce a (reduced) run.
const (
	// MaxMutationsPerRun caps total mutations in a single run.
	MaxMutationsPerRun = 50
	// MaxGoldenPrompts caps the number of golden prompts per run.
	MaxGoldenPrompts = 10
)

// CapPrompts returns at most MaxGoldenPrompts prompts and whether capping applied.
func CapPrompts(prompts []string) ([]string, bool) {
	if len(prompts) <= MaxGoldenPrompts {
		return prompts, false
	}
	return prompts[:MaxGoldenPrompts], true
}

// CapCountPerType reduces the per-kind mutation count so that
// prompts*kinds*count stays within MaxMutationsPerRun. Always returns >= 1.
func CapCountPerType(count, prompts, kinds int) (int, bool) {
	if prompts < 1 {
		prompts = 1
	}
	if kinds < 1 {
		kinds = 1
	}
	maxPerType := MaxMutationsPerRun / (prompts * kinds)
	if maxPerType < 1 {
		maxPerType = 1
	}
	if count <= maxPerType {
		return count, false
	}
	return maxPerType, true
}
