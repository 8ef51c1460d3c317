package analysis

import (
	"context"
	"log/slog"
)

// CompetitionProvider measures how contested a keyword is.
type CompetitionProvider interface {
	Analyze(ctx context.Context, keyword string) (Competition, error)
}

// JudgmentProvider evaluates a keyword given its competition metrics.
type JudgmentProvider interface {
	Judge(ctx context.Context, keyword string, competition Competition) (Judgment, error)
}

// Service orchestrates the two providers. The competition result feeds the
// judgment prompt, so the calls run in order. Either provider failing alone
// degrades its half of the report; both failing is a hard error.
type Service struct {
	competition CompetitionProvider
	judgment    JudgmentProvider
	logger      *slog.Logger
}

func NewService(competition CompetitionProvider, judgment JudgmentProvider, logger *slog.Logger) *Service {
	return &Service{competition: competition, judgment: judgment, logger: logger}
}

// Analyze produces a full report for the keyword.
func (s *Service) Analyze(ctx context.Context, keyword string) (Report, error) {
	report := Report{
		CompetitionState: ProviderOK,
		JudgmentState:    ProviderOK,
	}

	competition, err := s.competition.Analyze(ctx, keyword)
	if err != nil {
		s.logger.Warn("competition provider failed", "keyword", keyword, "error", err)
		report.CompetitionState = ProviderDegraded
		competition = Competition{}
	}
	report.Competition = competition

	judgment, err := s.judgment.Judge(ctx, keyword, competition)
	if err != nil {
		s.logger.Warn("judgment provider failed", "keyword", keyword, "error", err)
		report.JudgmentState = ProviderDegraded
		judgment = safeDefaultJudgment()
	}
	report.Judgment = judgment

	if report.CompetitionState == ProviderDegraded && report.JudgmentState == ProviderDegraded {
		return Report{}, ErrUpstreamUnavailable
	}
	return report, nil
}

// safeDefaultJudgment declines creation so a flaky provider can never cause
// an accidental spend downstream.
func safeDefaultJudgment() Judgment {
	return Judgment{
		WorthCreating: false,
		Reasoning:     "Analysis unavailable, try again later.",
		VideoConcepts: []string{},
		HookLine:      "",
	}
}
