package store

// Store is the operation surface shared by the local key-value backend and
// the SQLite backend. All calls are synchronous; callers are expected to
// access a store from one execution context at a time.
type Store interface {
	Register(email, password, name string) (*User, error)
	Login(email, password string) (*User, error)
	CurrentUser() (*User, error)
	Logout() error
	UpdateProfile(userID string, update ProfileUpdate) (*User, error)
	UserByID(userID string) (*User, error)

	UpsertDailyReport(report DailyReport) (*DailyReport, error)
	ReportsForDate(date string) ([]ReportWithAuthor, error)

	PutSummary(summary AISummary) (*AISummary, error)
	SummaryForDate(date string) (*AISummary, error)

	ListUsers() ([]User, error)
	UserReportStats(userID string) (*ReportStats, error)

	Export() (*ExportData, error)
	Import(data *ExportData) error

	Close() error
}

// unknownAuthor is the display name substituted when a report's author no
// longer resolves to a stored user.
const unknownAuthor = "unknown"
