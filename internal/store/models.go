package store

import "time"

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// DailyReport is keyed logically by (UserID, Date): at most one report per
// user per calendar date. Date is an ISO date string (YYYY-MM-DD).
type DailyReport struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Date             string    `json:"date"`
	Achievements     string    `json:"achievements"`
	CompletedTasks   string    `json:"completed_tasks"`
	IdeasSuggestions string    `json:"ideas_suggestions"`
	TomorrowTasks    string    `json:"tomorrow_tasks"`
	CreatedAt        time.Time `json:"created_at"`
}

// ReportWithAuthor is the read-side join of a report with its author's
// current display name.
type ReportWithAuthor struct {
	DailyReport
	AuthorName string `json:"author_name"`
}

// AISummary holds a generated team summary for one date, at most one per date.
type AISummary struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Content     string    `json:"content"`
	ReportCount int       `json:"report_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type ReportStats struct {
	TotalReports   int     `json:"total_reports"`
	LastReportDate *string `json:"last_report_date"`
}

// ProfileUpdate applies only the fields that are non-nil.
type ProfileUpdate struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// ExportData is a full snapshot of every collection, for backup/restore.
// Credentials map user id to password hash.
type ExportData struct {
	Users       []User            `json:"users"`
	Credentials map[string]string `json:"credentials"`
	CurrentUser *User             `json:"current_user,omitempty"`
	Reports     []DailyReport     `json:"reports"`
	AISummaries []AISummary       `json:"ai_summaries"`
}
