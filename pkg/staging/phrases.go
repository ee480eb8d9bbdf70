package staging

import "strings"

// PhraseTableVersion identifies the wording the staging provider was observed
// to use. The provider returns free text, so a wording change on their side
// shows up as StatusUnknown polls or unmatched sentinels.
const PhraseTableVersion = "2019-10"

type PollStatus int

const (
	StatusUnknown PollStatus = iota
	StatusNoData
	StatusReady
	StatusInProgress
	StatusSubmitted
	StatusFailed
)

var pollStatusNames = map[PollStatus]string{
	StatusUnknown:    "unknown",
	StatusNoData:     "completed with no data",
	StatusReady:      "completed with data",
	StatusInProgress: "in progress",
	StatusSubmitted:  "submitted",
	StatusFailed:     "failed",
}

func (s PollStatus) String() string {
	if name, ok := pollStatusNames[s]; ok {
		return name
	}

	return pollStatusNames[StatusUnknown]
}

const (
	phraseCompleted  = "Download request completed."
	phraseNoData     = "No data are available for download."
	phraseProcessing = "Download request is being processed."
	phraseSubmitted  = "Download request has been submitted."
	phraseFailed     = "Download request failed."
)

// Sentinel is a staging response that signals a provider wide outage.
type Sentinel struct {
	Phrase string
	Reason string
}

var Sentinels = []Sentinel{
	{Phrase: "Exception while getting ID for Globus user", Reason: "staging exception while resolving the transfer user"},
	{Phrase: "This service is temporarily unavailable. Please try again later", Reason: "staging service temporarily unavailable"},
}

// MatchSentinel returns the first sentinel contained in text.
func MatchSentinel(text string) (Sentinel, bool) {
	for _, s := range Sentinels {
		if strings.Contains(text, s.Phrase) {
			return s, true
		}
	}

	return Sentinel{}, false
}

// ClassifyPoll maps a poll response body to a PollStatus. Order matters: a
// completed response that carries the no data phrase is not ready.
func ClassifyPoll(text string) PollStatus {
	switch {
	case strings.Contains(text, phraseCompleted) && strings.Contains(text, phraseNoData):
		return StatusNoData
	case strings.Contains(text, phraseCompleted):
		return StatusReady
	case strings.Contains(text, phraseProcessing):
		return StatusInProgress
	case strings.Contains(text, phraseSubmitted):
		return StatusSubmitted
	case strings.Contains(text, phraseFailed):
		return StatusFailed
	default:
		return StatusUnknown
	}
}
