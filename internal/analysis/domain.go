package analysis

import "errors"

// Competition summarises how contested a keyword is on the video platform.
type Competition struct {
	TotalResults int `json:"totalResults"`
	AvgViews     int `json:"avgViews"`
	RecentVideos int `json:"recentVideos"`
}

// Judgment is the LLM verdict on whether a keyword is worth producing for.
type Judgment struct {
	WorthCreating bool     `json:"worthCreating"`
	Reasoning     string   `json:"reasoning"`
	VideoConcepts []string `json:"videoConcepts"`
	HookLine      string   `json:"hookLine"`
}

// ProviderState tags each half of the report so callers can tell a real
// provider answer from a degraded default.
type ProviderState string

const (
	ProviderOK       ProviderState = "ok"
	ProviderDegraded ProviderState = "degraded"
)

// Report combines both provider results for one keyword.
type Report struct {
	Competition      Competition   `json:"competition"`
	Judgment         Judgment      `json:"judgment"`
	CompetitionState ProviderState `json:"competitionState"`
	JudgmentState    ProviderState `json:"judgmentState"`
}

// ErrUpstreamUnavailable is returned only when both providers fail; a single
// failing provider degrades its half of the report instead.
var ErrUpstreamUnavailable = errors.New("analysis: upstream providers unavailable")
