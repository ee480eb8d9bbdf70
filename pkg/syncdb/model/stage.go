package model

// Stage is the pipeline state of a SyncRequest. The values are the strings stored
// in the status column.
type Stage string

const (
	StageNew            Stage = "New"
	StageStaging        Stage = "Staging"
	StageDownloading    Stage = "Downloading"
	StagePostedAndMoved Stage = "Posted and Moved"
	StageIntervention   Stage = "Intervention"
)

var AllStages = []Stage{StageNew, StageStaging, StageDownloading, StagePostedAndMoved, StageIntervention}

// edges are the normal-flow transitions. Intervention is handled separately in
// CanTransition.
var edges = map[Stage][]Stage{
	StageNew:         {StageStaging},
	StageStaging:     {StageDownloading, StageNew},
	StageDownloading: {StagePostedAndMoved, StageNew},
}

func (s Stage) IsValid() bool {
	for _, stage := range AllStages {
		if s == stage {
			return true
		}
	}

	return false
}

func (s Stage) IsTerminal() bool {
	return s == StagePostedAndMoved
}

// CanTransition reports whether from -> to is an edge of the state machine.
//
// Any non-terminal stage may move to Intervention. A row in Intervention may only
// leave it when an operator re-runs a driver in intervention mode, in which case
// Intervention stands in for the driver's normal predecessor stage and may take
// any edge that predecessor could take. Intervention -> Intervention is allowed
// and only refreshes the row's timestamps.
func CanTransition(from, to Stage) bool {
	if !from.IsValid() || !to.IsValid() || from.IsTerminal() {
		return false
	}

	if to == StageIntervention {
		return true
	}

	if from == StageIntervention {
		for _, targets := range edges {
			for _, target := range targets {
				if target == to {
					return true
				}
			}
		}

		return false
	}

	for _, target := range edges[from] {
		if target == to {
			return true
		}
	}

	return false
}

// Predecessor returns the stage a driver advancing rows into target selects from.
// With intervention set the predecessor is always Intervention.
func Predecessor(target Stage, intervention bool) (Stage, bool) {
	if intervention {
		return StageIntervention, true
	}

	switch target {
	case StageStaging:
		return StageNew, true
	case StageDownloading:
		return StageStaging, true
	case StagePostedAndMoved:
		return StageDownloading, true
	default:
		return "", false
	}
}
