package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"teampulse.io/daily-report/internal/auth"
	"teampulse.io/daily-report/internal/core"
	"teampulse.io/daily-report/internal/store"
)

type contextKey string

const userIDKey contextKey = "userID"

type APIHandler struct {
	reports   *core.ReportService
	summaries *core.SummaryService
}

func NewAPIHandler(rs *core.ReportService, ss *core.SummaryService) *APIHandler {
	return &APIHandler{reports: rs, summaries: ss}
}

func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		userID, err := auth.ValidateJWT(tokenString)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		user, err := h.reports.UserByID(userID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				http.Error(w, "User not found", http.StatusUnauthorized)
				return
			}
			log.Printf("Error resolving user %s: %v", userID, err)
			http.Error(w, "Failed to process user identity", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// writeError maps the store's error taxonomy to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidEmail),
		errors.Is(err, store.ErrWeakPassword),
		errors.Is(err, store.ErrInvalidName),
		errors.Is(err, store.ErrInvalidDate),
		errors.Is(err, core.ErrMissingSection):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, store.ErrDuplicateEmail):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, store.ErrNoSuchUser), errors.Is(err, store.ErrBadCredential):
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, store.ErrUserNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, core.ErrNoReports):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		log.Printf("Internal error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  *store.User `json:"user"`
}

func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.reports.Register(req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := auth.GenerateJWT(user.ID)
	if err != nil {
		log.Printf("Error generating JWT for user %s: %v", user.ID, err)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(AuthResponse{Token: token, User: user})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.reports.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := auth.GenerateJWT(user.ID)
	if err != nil {
		log.Printf("Error generating JWT for user %s: %v", user.ID, err)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(AuthResponse{Token: token, User: user})
}

func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.reports.Logout(); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(string)

	user, err := h.reports.UserByID(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(user)
}

func (h *APIHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(string)

	var update store.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.reports.UpdateProfile(userID, update)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(user)
}

type SubmitReportRequest struct {
	Date string `json:"date"`
	core.ReportFields
}

func (h *APIHandler) SubmitReportHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(string)

	var req SubmitReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.reports.SubmitReport(userID, req.Date, req.ReportFields)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(report)
}

func (h *APIHandler) ListReportsHandler(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")

	reports, err := h.reports.ReportsForDate(date)
	if err != nil {
		writeError(w, err)
		return
	}
	if reports == nil {
		reports = []store.ReportWithAuthor{}
	}
	json.NewEncoder(w).Encode(reports)
}

func (h *APIHandler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.reports.Team()
	if err != nil {
		writeError(w, err)
		return
	}
	if users == nil {
		users = []store.User{}
	}
	json.NewEncoder(w).Encode(users)
}

func (h *APIHandler) UserStatsHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	stats, err := h.reports.MemberStats(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(stats)
}

func (h *APIHandler) GenerateSummaryHandler(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	summary, err := h.summaries.GenerateForDate(r.Context(), date)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(summary)
}

func (h *APIHandler) GetSummaryHandler(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	summary, err := h.summaries.SummaryForDate(date)
	if err != nil {
		writeError(w, err)
		return
	}
	if summary == nil {
		http.Error(w, "No summary for that date", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(summary)
}

func (h *APIHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	data, err := h.reports.Export()
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(data)
}

func (h *APIHandler) ImportHandler(w http.ResponseWriter, r *http.Request) {
	var data store.ExportData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.reports.Import(&data); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
