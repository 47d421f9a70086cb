package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"teampulse.io/daily-report/internal/auth"
)

// SQLiteStore implements the same operation surface as LocalStore on a
// SQLite database. The uniqueness invariants are additionally enforced by
// the schema (UNIQUE indexes on email, (user_id, date), and date).
type SQLiteStore struct {
	db      *sql.DB
	session *Session
}

func NewSQLiteStore(dataSourceName string, session *Session) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db, session: session}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err = store.hydrateSession(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id TEXT PRIMARY KEY,
        email TEXT NOT NULL UNIQUE COLLATE NOCASE,
        name TEXT NOT NULL,
        created_at DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS credentials (
        user_id TEXT PRIMARY KEY,
        password_hash TEXT NOT NULL,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );

    CREATE TABLE IF NOT EXISTS session (
        slot INTEGER PRIMARY KEY CHECK (slot = 0),
        user_id TEXT NOT NULL
    );

    CREATE TABLE IF NOT EXISTS daily_reports (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL,
        date TEXT NOT NULL,
        achievements TEXT NOT NULL DEFAULT '',
        completed_tasks TEXT NOT NULL DEFAULT '',
        ideas_suggestions TEXT NOT NULL DEFAULT '',
        tomorrow_tasks TEXT NOT NULL DEFAULT '',
        created_at DATETIME NOT NULL,
        UNIQUE (user_id, date)
    );

    CREATE TABLE IF NOT EXISTS ai_summaries (
        id TEXT PRIMARY KEY,
        date TEXT NOT NULL UNIQUE,
        content TEXT NOT NULL,
        report_count INTEGER NOT NULL,
        created_at DATETIME NOT NULL
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) hydrateSession() error {
	var user User
	err := s.db.QueryRow(`
        SELECT u.id, u.email, u.name, u.created_at
        FROM session s JOIN users u ON u.id = s.user_id
        WHERE s.slot = 0`).Scan(&user.ID, &user.Email, &user.Name, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			s.session.clear()
			return nil
		}
		return fmt.Errorf("failed to hydrate session: %w", err)
	}
	s.session.set(&user)
	return nil
}

func (s *SQLiteStore) setSession(u *User) error {
	_, err := s.db.Exec("INSERT OR REPLACE INTO session (slot, user_id) VALUES (0, ?)", u.ID)
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	s.session.set(u)
	return nil
}

func (s *SQLiteStore) Register(email, password, name string) (*User, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if err := validateRegistration(email, password, name); err != nil {
		return nil, err
	}

	var existing string
	err := s.db.QueryRow("SELECT id FROM users WHERE email = ? COLLATE NOCASE", email).Scan(&existing)
	if err == nil {
		return nil, ErrDuplicateEmail
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.db.Exec("INSERT INTO users (id, email, name, created_at) VALUES (?, ?, ?, ?)",
		user.ID, user.Email, user.Name, user.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	if _, err := s.db.Exec("INSERT INTO credentials (user_id, password_hash) VALUES (?, ?)",
		user.ID, hash); err != nil {
		return nil, fmt.Errorf("failed to insert credential: %w", err)
	}
	if err := s.setSession(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *SQLiteStore) Login(email, password string) (*User, error) {
	email = normalizeEmail(email)

	var user User
	err := s.db.QueryRow("SELECT id, email, name, created_at FROM users WHERE email = ? COLLATE NOCASE", email).
		Scan(&user.ID, &user.Email, &user.Name, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNoSuchUser
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	var hash string
	err = s.db.QueryRow("SELECT password_hash FROM credentials WHERE user_id = ?", user.ID).Scan(&hash)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to query credential: %w", err)
	}
	if err == sql.ErrNoRows || !auth.CheckPasswordHash(password, hash) {
		return nil, ErrBadCredential
	}

	if err := s.setSession(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *SQLiteStore) CurrentUser() (*User, error) {
	return s.session.User(), nil
}

func (s *SQLiteStore) Logout() error {
	if _, err := s.db.Exec("DELETE FROM session WHERE slot = 0"); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.session.clear()
	return nil
}

func (s *SQLiteStore) UserByID(userID string) (*User, error) {
	var user User
	err := s.db.QueryRow("SELECT id, email, name, created_at FROM users WHERE id = ?", userID).
		Scan(&user.ID, &user.Email, &user.Name, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

func (s *SQLiteStore) UpdateProfile(userID string, update ProfileUpdate) (*User, error) {
	user, err := s.UserByID(userID)
	if err != nil {
		return nil, err
	}

	if update.Email != nil {
		email := normalizeEmail(*update.Email)
		var otherID string
		err := s.db.QueryRow("SELECT id FROM users WHERE email = ? COLLATE NOCASE AND id <> ?", email, userID).Scan(&otherID)
		if err == nil {
			return nil, ErrDuplicateEmail
		}
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		user.Email = email
	}
	if update.Name != nil {
		user.Name = strings.TrimSpace(*update.Name)
	}

	if _, err := s.db.Exec("UPDATE users SET email = ?, name = ? WHERE id = ?",
		user.Email, user.Name, userID); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if current := s.session.User(); current != nil && current.ID == userID {
		s.session.set(user)
	}
	return user, nil
}

func (s *SQLiteStore) UpsertDailyReport(report DailyReport) (*DailyReport, error) {
	var existingID string
	var existingCreated time.Time
	err := s.db.QueryRow("SELECT id, created_at FROM daily_reports WHERE user_id = ? AND date = ?",
		report.UserID, report.Date).Scan(&existingID, &existingCreated)
	switch {
	case err == nil:
		report.ID = existingID
		report.CreatedAt = existingCreated
		if _, err := s.db.Exec(`
            UPDATE daily_reports
            SET achievements = ?, completed_tasks = ?, ideas_suggestions = ?, tomorrow_tasks = ?
            WHERE id = ?`,
			report.Achievements, report.CompletedTasks, report.IdeasSuggestions, report.TomorrowTasks,
			report.ID); err != nil {
			return nil, fmt.Errorf("failed to update report: %w", err)
		}
	case err == sql.ErrNoRows:
		report.ID = uuid.NewString()
		report.CreatedAt = time.Now().UTC()
		if _, err := s.db.Exec(`
            INSERT INTO daily_reports (id, user_id, date, achievements, completed_tasks, ideas_suggestions, tomorrow_tasks, created_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			report.ID, report.UserID, report.Date, report.Achievements, report.CompletedTasks,
			report.IdeasSuggestions, report.TomorrowTasks, report.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to insert report: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to query report: %w", err)
	}
	return &report, nil
}

func (s *SQLiteStore) ReportsForDate(date string) ([]ReportWithAuthor, error) {
	rows, err := s.db.Query(`
        SELECT r.id, r.user_id, r.date, r.achievements, r.completed_tasks,
               r.ideas_suggestions, r.tomorrow_tasks, r.created_at,
               COALESCE(u.name, ?)
        FROM daily_reports r
        LEFT JOIN users u ON u.id = r.user_id
        WHERE r.date = ?
        ORDER BY r.created_at ASC`, unknownAuthor, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var out []ReportWithAuthor
	for rows.Next() {
		var r ReportWithAuthor
		if err := rows.Scan(&r.ID, &r.UserID, &r.Date, &r.Achievements, &r.CompletedTasks,
			&r.IdeasSuggestions, &r.TomorrowTasks, &r.CreatedAt, &r.AuthorName); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) PutSummary(summary AISummary) (*AISummary, error) {
	if summary.CreatedAt.IsZero() {
		summary.CreatedAt = time.Now().UTC()
	}

	var existingID string
	err := s.db.QueryRow("SELECT id FROM ai_summaries WHERE date = ?", summary.Date).Scan(&existingID)
	switch {
	case err == nil:
		summary.ID = existingID
		if _, err := s.db.Exec("UPDATE ai_summaries SET content = ?, report_count = ?, created_at = ? WHERE id = ?",
			summary.Content, summary.ReportCount, summary.CreatedAt, summary.ID); err != nil {
			return nil, fmt.Errorf("failed to update summary: %w", err)
		}
	case err == sql.ErrNoRows:
		if summary.ID == "" {
			summary.ID = uuid.NewString()
		}
		if _, err := s.db.Exec("INSERT INTO ai_summaries (id, date, content, report_count, created_at) VALUES (?, ?, ?, ?, ?)",
			summary.ID, summary.Date, summary.Content, summary.ReportCount, summary.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to insert summary: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to query summary: %w", err)
	}
	return &summary, nil
}

func (s *SQLiteStore) SummaryForDate(date string) (*AISummary, error) {
	var summary AISummary
	err := s.db.QueryRow("SELECT id, date, content, report_count, created_at FROM ai_summaries WHERE date = ?", date).
		Scan(&summary.ID, &summary.Date, &summary.Content, &summary.ReportCount, &summary.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query summary: %w", err)
	}
	return &summary, nil
}

func (s *SQLiteStore) ListUsers() ([]User, error) {
	rows, err := s.db.Query("SELECT id, email, name, created_at FROM users ORDER BY created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *SQLiteStore) UserReportStats(userID string) (*ReportStats, error) {
	var count int
	var last sql.NullString
	err := s.db.QueryRow("SELECT COUNT(*), MAX(date) FROM daily_reports WHERE user_id = ?", userID).
		Scan(&count, &last)
	if err != nil {
		return nil, fmt.Errorf("failed to query report stats: %w", err)
	}

	stats := &ReportStats{TotalReports: count}
	if last.Valid {
		stats.LastReportDate = &last.String
	}
	return stats, nil
}

func (s *SQLiteStore) Export() (*ExportData, error) {
	users, err := s.ListUsers()
	if err != nil {
		return nil, err
	}

	creds := make(map[string]string)
	rows, err := s.db.Query("SELECT user_id, password_hash FROM credentials")
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var userID, hash string
		if err := rows.Scan(&userID, &hash); err != nil {
			return nil, fmt.Errorf("failed to scan credential row: %w", err)
		}
		creds[userID] = hash
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	reports, err := s.allReports()
	if err != nil {
		return nil, err
	}
	summaries, err := s.allSummaries()
	if err != nil {
		return nil, err
	}

	return &ExportData{
		Users:       users,
		Credentials: creds,
		CurrentUser: s.session.User(),
		Reports:     reports,
		AISummaries: summaries,
	}, nil
}

func (s *SQLiteStore) allReports() ([]DailyReport, error) {
	rows, err := s.db.Query(`
        SELECT id, user_id, date, achievements, completed_tasks, ideas_suggestions, tomorrow_tasks, created_at
        FROM daily_reports ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []DailyReport
	for rows.Next() {
		var r DailyReport
		if err := rows.Scan(&r.ID, &r.UserID, &r.Date, &r.Achievements, &r.CompletedTasks,
			&r.IdeasSuggestions, &r.TomorrowTasks, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (s *SQLiteStore) allSummaries() ([]AISummary, error) {
	rows, err := s.db.Query("SELECT id, date, content, report_count, created_at FROM ai_summaries ORDER BY date ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	var summaries []AISummary
	for rows.Next() {
		var sum AISummary
		if err := rows.Scan(&sum.ID, &sum.Date, &sum.Content, &sum.ReportCount, &sum.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// Import replaces every collection with the snapshot in data, in one
// transaction.
func (s *SQLiteStore) Import(data *ExportData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"users", "credentials", "daily_reports", "ai_summaries", "session"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, u := range data.Users {
		if _, err := tx.Exec("INSERT INTO users (id, email, name, created_at) VALUES (?, ?, ?, ?)",
			u.ID, u.Email, u.Name, u.CreatedAt); err != nil {
			return fmt.Errorf("failed to import user %s: %w", u.ID, err)
		}
	}
	for userID, hash := range data.Credentials {
		if _, err := tx.Exec("INSERT INTO credentials (user_id, password_hash) VALUES (?, ?)", userID, hash); err != nil {
			return fmt.Errorf("failed to import credential for %s: %w", userID, err)
		}
	}
	for _, r := range data.Reports {
		if _, err := tx.Exec(`
            INSERT INTO daily_reports (id, user_id, date, achievements, completed_tasks, ideas_suggestions, tomorrow_tasks, created_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.UserID, r.Date, r.Achievements, r.CompletedTasks, r.IdeasSuggestions, r.TomorrowTasks, r.CreatedAt); err != nil {
			return fmt.Errorf("failed to import report %s: %w", r.ID, err)
		}
	}
	for _, sum := range data.AISummaries {
		if _, err := tx.Exec("INSERT INTO ai_summaries (id, date, content, report_count, created_at) VALUES (?, ?, ?, ?, ?)",
			sum.ID, sum.Date, sum.Content, sum.ReportCount, sum.CreatedAt); err != nil {
			return fmt.Errorf("failed to import summary %s: %w", sum.ID, err)
		}
	}
	if data.CurrentUser != nil {
		if _, err := tx.Exec("INSERT INTO session (slot, user_id) VALUES (0, ?)", data.CurrentUser.ID); err != nil {
			return fmt.Errorf("failed to import session: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	s.session.set(data.CurrentUser)
	return nil
}
