package core

import (
	"errors"
	"strings"

	"teampulse.io/daily-report/internal/store"
)

// ErrMissingSection is returned when a section the submission policy marks
// as required is empty.
var ErrMissingSection = errors.New("required report section is empty")

// ReportFields are the four free-text sections of a daily report.
type ReportFields struct {
	Achievements     string `json:"achievements"`
	CompletedTasks   string `json:"completed_tasks"`
	IdeasSuggestions string `json:"ideas_suggestions"`
	TomorrowTasks    string `json:"tomorrow_tasks"`
}

// SubmitPolicy marks which sections a submission must fill in. The default
// requires everything except ideas/suggestions, matching the report form.
type SubmitPolicy struct {
	RequireAchievements     bool
	RequireCompletedTasks   bool
	RequireIdeasSuggestions bool
	RequireTomorrowTasks    bool
}

func DefaultSubmitPolicy() SubmitPolicy {
	return SubmitPolicy{
		RequireAchievements:   true,
		RequireCompletedTasks: true,
		RequireTomorrowTasks:  true,
	}
}

func (p SubmitPolicy) check(fields ReportFields) error {
	missing := p.RequireAchievements && strings.TrimSpace(fields.Achievements) == "" ||
		p.RequireCompletedTasks && strings.TrimSpace(fields.CompletedTasks) == "" ||
		p.RequireIdeasSuggestions && strings.TrimSpace(fields.IdeasSuggestions) == "" ||
		p.RequireTomorrowTasks && strings.TrimSpace(fields.TomorrowTasks) == ""
	if missing {
		return ErrMissingSection
	}
	return nil
}

// ReportService is the business layer over the store: it owns date and
// submission-policy validation and leaves persistence contracts to the
// store itself.
type ReportService struct {
	store  store.Store
	policy SubmitPolicy
}

func NewReportService(st store.Store, policy SubmitPolicy) *ReportService {
	return &ReportService{store: st, policy: policy}
}

func (s *ReportService) Register(email, password, name string) (*store.User, error) {
	return s.store.Register(email, password, name)
}

func (s *ReportService) Login(email, password string) (*store.User, error) {
	return s.store.Login(email, password)
}

func (s *ReportService) Logout() error {
	return s.store.Logout()
}

func (s *ReportService) UserByID(userID string) (*store.User, error) {
	return s.store.UserByID(userID)
}

func (s *ReportService) UpdateProfile(userID string, update store.ProfileUpdate) (*store.User, error) {
	return s.store.UpdateProfile(userID, update)
}

// SubmitReport upserts the caller's report for date: a second submission
// for the same day replaces the sections but keeps the original id and
// creation timestamp.
func (s *ReportService) SubmitReport(userID, date string, fields ReportFields) (*store.DailyReport, error) {
	if !store.ValidDate(date) {
		return nil, store.ErrInvalidDate
	}
	if err := s.policy.check(fields); err != nil {
		return nil, err
	}
	return s.store.UpsertDailyReport(store.DailyReport{
		UserID:           userID,
		Date:             date,
		Achievements:     fields.Achievements,
		CompletedTasks:   fields.CompletedTasks,
		IdeasSuggestions: fields.IdeasSuggestions,
		TomorrowTasks:    fields.TomorrowTasks,
	})
}

func (s *ReportService) ReportsForDate(date string) ([]store.ReportWithAuthor, error) {
	if !store.ValidDate(date) {
		return nil, store.ErrInvalidDate
	}
	return s.store.ReportsForDate(date)
}

func (s *ReportService) Team() ([]store.User, error) {
	return s.store.ListUsers()
}

func (s *ReportService) MemberStats(userID string) (*store.ReportStats, error) {
	if _, err := s.store.UserByID(userID); err != nil {
		return nil, err
	}
	return s.store.UserReportStats(userID)
}

func (s *ReportService) Export() (*store.ExportData, error) {
	return s.store.Export()
}

func (s *ReportService) Import(data *store.ExportData) error {
	return s.store.Import(data)
}
