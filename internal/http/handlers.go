package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"expensetracker/internal/core"
	"expensetracker/internal/services"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": s.svc.Backend(),
	})
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string  `json:"name"`
		Email  *string `json:"email"`
		APIKey string  `json:"api_key"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := s.svc.CreateUser(r.Context(), req.Name, req.Email, req.APIKey)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully.",
		"user":    user,
	})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(users), "users": users})
}

// ---------------------------------------------------------------------------
// Expenses
// ---------------------------------------------------------------------------

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var in core.ExpenseInput
	if !decodeJSON(w, r, &in) {
		return
	}
	expense, err := s.svc.AddExpense(r.Context(), currentUser(r).ID, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Expense added successfully.",
		"expense": expense,
	})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := core.ExpenseFilter{
		Category:  core.Category(q.Get("category")),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be a number")
			return
		}
		filter.Limit = n
	}
	expenses, err := s.svc.GetExpenses(r.Context(), currentUser(r).ID, filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(expenses), "expenses": expenses})
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	expense, err := s.svc.GetExpense(r.Context(), currentUser(r).ID, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if expense == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Expense with ID %d not found.", id))
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch core.ExpensePatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	expense, err := s.svc.UpdateExpense(r.Context(), currentUser(r).ID, id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if expense == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Expense with ID %d not found.", id))
		return
	}
	msg := "Expense updated successfully."
	if patch.IsEmpty() {
		msg = "No fields to update."
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": msg, "expense": expense})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := s.svc.DeleteExpense(r.Context(), currentUser(r).ID, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Expense with ID %d not found.", id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Expense #%d deleted successfully.", id),
	})
}

func (s *Server) handleTopExpenses(w http.ResponseWriter, r *http.Request) {
	n := 0
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "n must be a number")
			return
		}
		n = parsed
	}
	expenses, err := s.svc.TopExpenses(r.Context(), currentUser(r).ID, n)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(expenses), "expenses": expenses})
}

// ---------------------------------------------------------------------------
// Summaries / categories
// ---------------------------------------------------------------------------

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := currentUser(r).ID

	var (
		summary *services.Summary
		err     error
	)
	if q.Has("start_date") || q.Has("end_date") {
		summary, err = s.svc.SpendingSummary(r.Context(), userID, q.Get("start_date"), q.Get("end_date"))
	} else {
		summary, err = s.svc.PeriodSummary(r.Context(), userID, core.Period(q.Get("period")))
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.svc.Categories(r.Context(), currentUser(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// ---------------------------------------------------------------------------
// Budgets
// ---------------------------------------------------------------------------

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var in core.BudgetInput
	if !decodeJSON(w, r, &in) {
		return
	}
	budget, err := s.svc.SetBudget(r.Context(), currentUser(r).ID, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Budget set successfully.",
		"budget":  budget,
	})
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	month, ok := intQuery(w, q.Get("month"), "month")
	if !ok {
		return
	}
	year, ok := intQuery(w, q.Get("year"), "year")
	if !ok {
		return
	}
	report, err := s.svc.BudgetStatus(r.Context(), currentUser(r).ID, month, year)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if len(report.Statuses) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"month":    report.Month,
			"year":     report.Year,
			"message":  "No budgets set for this period.",
			"statuses": report.Statuses,
		})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError renders a validation failure as a client error and
// everything else as an opaque database error; a single failed call never
// takes the process down.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrValidation) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.ErrorContext(r.Context(), "Operation failed",
		"error", err, "method", r.Method, "path", r.URL.Path)
	writeError(w, http.StatusInternalServerError, "database error: "+err.Error())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "id must be a positive number")
		return 0, false
	}
	return id, true
}

func intQuery(w http.ResponseWriter, raw, name string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, name+" must be a number")
		return 0, false
	}
	return n, true
}
