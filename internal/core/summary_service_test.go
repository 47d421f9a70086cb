package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"teampulse.io/daily-report/internal/store"
)

type fakeGenerator struct {
	lastPrompt string
	out        string
	err        error
}

func (f *fakeGenerator) GenerateSummary(_ context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

func TestGenerateForDate(t *testing.T) {
	st := newTestStore(t)
	jo, err := st.Register("jo@example.com", "secret1", "Jo")
	require.NoError(t, err)
	sam, err := st.Register("sam@example.com", "secret1", "Sam")
	require.NoError(t, err)

	_, err = st.UpsertDailyReport(store.DailyReport{
		UserID:       jo.ID,
		Date:         "2025-06-02",
		Achievements: "shipped the exporter",
	})
	require.NoError(t, err)
	_, err = st.UpsertDailyReport(store.DailyReport{
		UserID:           sam.ID,
		Date:             "2025-06-02",
		IdeasSuggestions: "automate release notes",
	})
	require.NoError(t, err)

	llm := &fakeGenerator{out: "  the team shipped things  "}
	svc := NewSummaryService(st, llm)

	summary, err := svc.GenerateForDate(context.Background(), "2025-06-02")
	require.NoError(t, err)

	assert.Equal(t, "2025-06-02", summary.Date)
	assert.Equal(t, "the team shipped things", summary.Content, "model output is trimmed")
	assert.Equal(t, 2, summary.ReportCount)

	// The prompt carries every author's name and their filled-in sections.
	assert.Contains(t, llm.lastPrompt, "[Jo]")
	assert.Contains(t, llm.lastPrompt, "[Sam]")
	assert.Contains(t, llm.lastPrompt, "Achievements: shipped the exporter")
	assert.Contains(t, llm.lastPrompt, "Ideas and suggestions: automate release notes")
	assert.NotContains(t, llm.lastPrompt, "Completed tasks:", "empty sections are omitted")

	// The summary is stored and readable back.
	stored, err := svc.SummaryForDate("2025-06-02")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, summary.ID, stored.ID)

	// Regenerating replaces the content but keeps the identity.
	llm.out = "second pass"
	again, err := svc.GenerateForDate(context.Background(), "2025-06-02")
	require.NoError(t, err)
	assert.Equal(t, summary.ID, again.ID)
	assert.Equal(t, "second pass", again.Content)
}

func TestGenerateForDateNoReports(t *testing.T) {
	llm := &fakeGenerator{out: "should not be called"}
	svc := NewSummaryService(newTestStore(t), llm)

	_, err := svc.GenerateForDate(context.Background(), "2025-06-02")
	assert.ErrorIs(t, err, ErrNoReports)
	assert.Empty(t, llm.lastPrompt, "no LLM call for an empty day")
}

func TestGenerateForDateInvalidDate(t *testing.T) {
	svc := NewSummaryService(newTestStore(t), &fakeGenerator{})

	_, err := svc.GenerateForDate(context.Background(), "junk")
	assert.ErrorIs(t, err, store.ErrInvalidDate)

	_, err = svc.SummaryForDate("junk")
	assert.ErrorIs(t, err, store.ErrInvalidDate)
}

func TestGenerateForDateLLMFailure(t *testing.T) {
	st := newTestStore(t)
	jo, err := st.Register("jo@example.com", "secret1", "Jo")
	require.NoError(t, err)
	_, err = st.UpsertDailyReport(store.DailyReport{UserID: jo.ID, Date: "2025-06-02", Achievements: "a"})
	require.NoError(t, err)

	svc := NewSummaryService(st, &fakeGenerator{err: assert.AnError})

	_, err = svc.GenerateForDate(context.Background(), "2025-06-02")
	require.Error(t, err)

	// A failed generation must not leave a partial summary behind.
	stored, err := svc.SummaryForDate("2025-06-02")
	require.NoError(t, err)
	assert.Nil(t, stored)
}
