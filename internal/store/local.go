package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"teampulse.io/daily-report/internal/auth"
)

// LocalStore keeps every collection as a JSON document in a key-value
// medium, mirroring a browser-local storage area: reads load the full
// document, writes persist the full snapshot back. There is no locking;
// the backing medium is assumed to serialize access externally.
type LocalStore struct {
	kv      KV
	session *Session
}

func NewLocalStore(kv KV, session *Session) (*LocalStore, error) {
	s := &LocalStore{kv: kv, session: session}

	// Hydrate the session slot from the persisted current-user document.
	var current User
	found, err := s.loadDoc(keyCurrentUser, &current)
	if err != nil {
		return nil, err
	}
	if found {
		session.set(&current)
	} else {
		session.clear()
	}
	return s, nil
}

func (s *LocalStore) Close() error { return nil }

// loadDoc unmarshals the document stored under key into v. It reports
// whether the document existed.
func (s *LocalStore) loadDoc(key string, v any) (bool, error) {
	data, found, err := s.kv.Get(key)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%w: corrupt %s document: %v", ErrStorageUnavailable, key, err)
	}
	return true, nil
}

func (s *LocalStore) saveDoc(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.kv.Put(key, data); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *LocalStore) loadUsers() ([]User, error) {
	var users []User
	if _, err := s.loadDoc(keyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *LocalStore) loadCredentials() (map[string]string, error) {
	creds := make(map[string]string)
	if _, err := s.loadDoc(keyCredentials, &creds); err != nil {
		return nil, err
	}
	return creds, nil
}

func (s *LocalStore) loadReports() ([]DailyReport, error) {
	var reports []DailyReport
	if _, err := s.loadDoc(keyReports, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (s *LocalStore) loadSummaries() ([]AISummary, error) {
	var summaries []AISummary
	if _, err := s.loadDoc(keySummaries, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// setSession persists u as the current user and updates the session handle.
func (s *LocalStore) setSession(u *User) error {
	if err := s.saveDoc(keyCurrentUser, u); err != nil {
		return err
	}
	s.session.set(u)
	return nil
}

func (s *LocalStore) Register(email, password, name string) (*User, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if err := validateRegistration(email, password, name); err != nil {
		return nil, err
	}

	users, err := s.loadUsers()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return nil, ErrDuplicateEmail
		}
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

	users = append(users, user)
	if err := s.saveDoc(keyUsers, users); err != nil {
		return nil, err
	}

	creds, err := s.loadCredentials()
	if err != nil {
		return nil, err
	}
	creds[user.ID] = hash
	if err := s.saveDoc(keyCredentials, creds); err != nil {
		return nil, err
	}

	if err := s.setSession(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *LocalStore) Login(email, password string) (*User, error) {
	email = normalizeEmail(email)

	users, err := s.loadUsers()
	if err != nil {
		return nil, err
	}
	var user *User
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			user = &users[i]
			break
		}
	}
	if user == nil {
		return nil, ErrNoSuchUser
	}

	creds, err := s.loadCredentials()
	if err != nil {
		return nil, err
	}
	hash, ok := creds[user.ID]
	if !ok || !auth.CheckPasswordHash(password, hash) {
		return nil, ErrBadCredential
	}

	if err := s.setSession(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *LocalStore) CurrentUser() (*User, error) {
	return s.session.User(), nil
}

func (s *LocalStore) Logout() error {
	if err := s.kv.Delete(keyCurrentUser); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	s.session.clear()
	return nil
}

func (s *LocalStore) UserByID(userID string) (*User, error) {
	users, err := s.loadUsers()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == userID {
			u := users[i]
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *LocalStore) UpdateProfile(userID string, update ProfileUpdate) (*User, error) {
	users, err := s.loadUsers()
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range users {
		if users[i].ID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrUserNotFound
	}

	if update.Email != nil {
		email := normalizeEmail(*update.Email)
		for _, u := range users {
			if u.ID != userID && strings.EqualFold(u.Email, email) {
				return nil, ErrDuplicateEmail
			}
		}
		users[idx].Email = email
	}
	if update.Name != nil {
		users[idx].Name = strings.TrimSpace(*update.Name)
	}

	if err := s.saveDoc(keyUsers, users); err != nil {
		return nil, err
	}

	updated := users[idx]
	if current := s.session.User(); current != nil && current.ID == userID {
		if err := s.setSession(&updated); err != nil {
			return nil, err
		}
	}
	return &updated, nil
}

// UpsertDailyReport inserts or replaces the report for (UserID, Date). On
// replace the original id and creation timestamp are preserved and only the
// four text sections change.
func (s *LocalStore) UpsertDailyReport(report DailyReport) (*DailyReport, error) {
	reports, err := s.loadReports()
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range reports {
		if reports[i].UserID == report.UserID && reports[i].Date == report.Date {
			idx = i
			break
		}
	}

	if idx >= 0 {
		report.ID = reports[idx].ID
		report.CreatedAt = reports[idx].CreatedAt
		reports[idx] = report
	} else {
		report.ID = uuid.NewString()
		report.CreatedAt = time.Now().UTC()
		reports = append(reports, report)
	}

	if err := s.saveDoc(keyReports, reports); err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *LocalStore) ReportsForDate(date string) ([]ReportWithAuthor, error) {
	reports, err := s.loadReports()
	if err != nil {
		return nil, err
	}
	users, err := s.loadUsers()
	if err != nil {
		return nil, err
	}
	return joinAuthors(reports, users, date), nil
}

// joinAuthors pairs each report for date with its author's current display
// name, substituting a sentinel label for orphaned references.
func joinAuthors(reports []DailyReport, users []User, date string) []ReportWithAuthor {
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	var out []ReportWithAuthor
	for _, r := range reports {
		if r.Date != date {
			continue
		}
		name, ok := names[r.UserID]
		if !ok {
			name = unknownAuthor
		}
		out = append(out, ReportWithAuthor{DailyReport: r, AuthorName: name})
	}
	return out
}

// PutSummary inserts or replaces the summary for its date. On replace the
// existing id is preserved.
func (s *LocalStore) PutSummary(summary AISummary) (*AISummary, error) {
	summaries, err := s.loadSummaries()
	if err != nil {
		return nil, err
	}

	if summary.CreatedAt.IsZero() {
		summary.CreatedAt = time.Now().UTC()
	}

	idx := -1
	for i := range summaries {
		if summaries[i].Date == summary.Date {
			idx = i
			break
		}
	}
	if idx >= 0 {
		summary.ID = summaries[idx].ID
		summaries[idx] = summary
	} else {
		if summary.ID == "" {
			summary.ID = uuid.NewString()
		}
		summaries = append(summaries, summary)
	}

	if err := s.saveDoc(keySummaries, summaries); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *LocalStore) SummaryForDate(date string) (*AISummary, error) {
	summaries, err := s.loadSummaries()
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		if summaries[i].Date == date {
			out := summaries[i]
			return &out, nil
		}
	}
	return nil, nil
}

func (s *LocalStore) ListUsers() ([]User, error) {
	return s.loadUsers()
}

// UserReportStats counts the user's reports and finds the most recent date.
// Dates are unique per user, so the maximum is well-defined; ISO date
// strings compare the same lexicographically as chronologically.
func (s *LocalStore) UserReportStats(userID string) (*ReportStats, error) {
	reports, err := s.loadReports()
	if err != nil {
		return nil, err
	}

	stats := &ReportStats{}
	for _, r := range reports {
		if r.UserID != userID {
			continue
		}
		stats.TotalReports++
		if stats.LastReportDate == nil || r.Date > *stats.LastReportDate {
			date := r.Date
			stats.LastReportDate = &date
		}
	}
	return stats, nil
}

func (s *LocalStore) Export() (*ExportData, error) {
	users, err := s.loadUsers()
	if err != nil {
		return nil, err
	}
	creds, err := s.loadCredentials()
	if err != nil {
		return nil, err
	}
	reports, err := s.loadReports()
	if err != nil {
		return nil, err
	}
	summaries, err := s.loadSummaries()
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

// Import replaces every collection with the snapshot in data.
func (s *LocalStore) Import(data *ExportData) error {
	if err := s.saveDoc(keyUsers, data.Users); err != nil {
		return err
	}
	creds := data.Credentials
	if creds == nil {
		creds = map[string]string{}
	}
	if err := s.saveDoc(keyCredentials, creds); err != nil {
		return err
	}
	if err := s.saveDoc(keyReports, data.Reports); err != nil {
		return err
	}
	if err := s.saveDoc(keySummaries, data.AISummaries); err != nil {
		return err
	}
	if data.CurrentUser != nil {
		return s.setSession(data.CurrentUser)
	}
	return s.Logout()
}
