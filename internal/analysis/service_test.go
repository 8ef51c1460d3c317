package analysis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompetition struct {
	result Competition
	err    error
	calls  int
}

func (f *fakeCompetition) Analyze(ctx context.Context, keyword string) (Competition, error) {
	f.calls++
	return f.result, f.err
}

type fakeJudgment struct {
	result Judgment
	err    error
	seen   Competition
}

func (f *fakeJudgment) Judge(ctx context.Context, keyword string, competition Competition) (Judgment, error) {
	f.seen = competition
	return f.result, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAnalyzeBothProvidersHealthy(t *testing.T) {
	competition := &fakeCompetition{result: Competition{TotalResults: 120, AvgViews: 4500, RecentVideos: 7}}
	judgment := &fakeJudgment{result: Judgment{WorthCreating: true, Reasoning: "low competition", VideoConcepts: []string{"intro"}, HookLine: "watch this"}}
	svc := NewService(competition, judgment, discardLogger())

	report, err := svc.Analyze(context.Background(), "sourdough starter")
	require.NoError(t, err)
	assert.Equal(t, ProviderOK, report.CompetitionState)
	assert.Equal(t, ProviderOK, report.JudgmentState)
	assert.True(t, report.Judgment.WorthCreating)
	assert.Equal(t, competition.result, judgment.seen, "judgment must receive the measured competition")
}

func TestAnalyzeDegradesCompetitionHalf(t *testing.T) {
	competition := &fakeCompetition{err: errors.New("search quota exceeded")}
	judgment := &fakeJudgment{result: Judgment{WorthCreating: true, Reasoning: "ok", VideoConcepts: []string{}}}
	svc := NewService(competition, judgment, discardLogger())

	report, err := svc.Analyze(context.Background(), "sourdough starter")
	require.NoError(t, err)
	assert.Equal(t, ProviderDegraded, report.CompetitionState)
	assert.Equal(t, ProviderOK, report.JudgmentState)
	assert.Equal(t, Competition{}, report.Competition)
	assert.Equal(t, Competition{}, judgment.seen, "judgment sees zeroed metrics when measurement failed")
}

func TestAnalyzeDegradesJudgmentHalf(t *testing.T) {
	competition := &fakeCompetition{result: Competition{TotalResults: 40, AvgViews: 900, RecentVideos: 2}}
	judgment := &fakeJudgment{err: errors.New("model overloaded")}
	svc := NewService(competition, judgment, discardLogger())

	report, err := svc.Analyze(context.Background(), "sourdough starter")
	require.NoError(t, err)
	assert.Equal(t, ProviderOK, report.CompetitionState)
	assert.Equal(t, ProviderDegraded, report.JudgmentState)
	assert.False(t, report.Judgment.WorthCreating, "fallback judgment must decline creation")
	assert.NotNil(t, report.Judgment.VideoConcepts)
}

func TestAnalyzeBothProvidersDown(t *testing.T) {
	competition := &fakeCompetition{err: errors.New("search down")}
	judgment := &fakeJudgment{err: errors.New("model down")}
	svc := NewService(competition, judgment, discardLogger())

	_, err := svc.Analyze(context.Background(), "sourdough starter")
	require.ErrorIs(t, err, ErrUpstreamUnavailable)
}
