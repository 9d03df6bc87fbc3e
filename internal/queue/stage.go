package queue

// Stage names one pipeline phase with its own stream and handler.
type Stage string

const (
	StageDiscovery  Stage = "discovery"
	StageEnrichment Stage = "enrichment"
	StageScrape     Stage = "scrape"
	StageSynthesis  Stage = "synthesis"
	StageMux        Stage = "mux"
	StageCompletion Stage = "completion"
	StageSync       Stage = "sync"
)

var allStages = []Stage{
	StageDiscovery,
	StageEnrichment,
	StageScrape,
	StageSynthesis,
	StageMux,
	StageCompletion,
	StageSync,
}

// AllStages returns the ordered list of pipeline stages.
func AllStages() []Stage {
	cp := make([]Stage, len(allStages))
	copy(cp, allStages)
	return cp
}

var stageSet = func() map[Stage]struct{} {
	set := make(map[Stage]struct{}, len(allStages))
	for _, stage := range allStages {
		set[stage] = struct{}{}
	}
	return set
}()

// ParseStage converts a string into a known Stage.
func ParseStage(value string) (Stage, bool) {
	stage := Stage(value)
	_, ok := stageSet[stage]
	return stage, ok
}
