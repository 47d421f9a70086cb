package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"teampulse.io/daily-report/internal/store"
)

// ErrNoReports is returned when a summary is requested for a date nobody
// has reported on.
var ErrNoReports = errors.New("no reports to summarize for that date")

// summaryGenerator is the slice of LLMService the summary flow needs.
type summaryGenerator interface {
	GenerateSummary(ctx context.Context, prompt string) (string, error)
}

// SummaryService turns one day's reports into a stored AI summary. At most
// one summary exists per date; regenerating replaces the content and count.
type SummaryService struct {
	store store.Store
	llm   summaryGenerator
}

func NewSummaryService(st store.Store, llm summaryGenerator) *SummaryService {
	return &SummaryService{store: st, llm: llm}
}

// GenerateForDate collects the date's reports, asks the model for a team
// summary, and upserts it with the number of reports it was derived from.
func (s *SummaryService) GenerateForDate(ctx context.Context, date string) (*store.AISummary, error) {
	if !store.ValidDate(date) {
		return nil, store.ErrInvalidDate
	}

	reports, err := s.store.ReportsForDate(date)
	if err != nil {
		return nil, fmt.Errorf("failed to load reports for %s: %w", date, err)
	}
	if len(reports) == 0 {
		return nil, ErrNoReports
	}

	content, err := s.llm.GenerateSummary(ctx, buildSummaryPrompt(reports))
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary for %s: %w", date, err)
	}

	return s.store.PutSummary(store.AISummary{
		Date:        date,
		Content:     strings.TrimSpace(content),
		ReportCount: len(reports),
	})
}

func (s *SummaryService) SummaryForDate(date string) (*store.AISummary, error) {
	if !store.ValidDate(date) {
		return nil, store.ErrInvalidDate
	}
	return s.store.SummaryForDate(date)
}

func buildSummaryPrompt(reports []store.ReportWithAuthor) string {
	var blocks []string
	for _, r := range reports {
		var sections []string
		if r.Achievements != "" {
			sections = append(sections, "Achievements: "+r.Achievements)
		}
		if r.CompletedTasks != "" {
			sections = append(sections, "Completed tasks: "+r.CompletedTasks)
		}
		if r.IdeasSuggestions != "" {
			sections = append(sections, "Ideas and suggestions: "+r.IdeasSuggestions)
		}
		if r.TomorrowTasks != "" {
			sections = append(sections, "Tomorrow's plan: "+r.TomorrowTasks)
		}
		blocks = append(blocks, fmt.Sprintf("[%s]\n%s\n", r.AuthorName, strings.Join(sections, "\n")))
	}

	return fmt.Sprintf(`These are the team's daily work reports. Analyze them and write a comprehensive summary.

%s

Use this structure:

## Team performance summary
- The main things the team achieved

## Completed work
- The important work the team finished

## Ideas and suggestions
- Improvement ideas and suggestions raised by team members

## Tomorrow's plan
- The team's main plans for tomorrow

## Insights and recommendations
- Analysis of the team's output and directions for improvement

Keep each section concise and concrete. Mention team members by name where it credits their contribution.`,
		strings.Join(blocks, "\n---\n\n"))
}
