package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/store"
)

// handleTransactions serves the list page and the save form post.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleTransactionList(w, r)
	case http.MethodPost:
		s.handleTransactionSave(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleTransactionList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	selected := core.ParseType(r.URL.Query().Get("type"))

	transactions, err := s.txs.GetByType(ctx, selected)
	if err != nil {
		slog.ErrorContext(ctx, "Transaction list failed", "error", err)
		http.Error(w, "failed to load transactions", http.StatusInternalServerError)
		return
	}
	totalIncome, err := s.txs.TotalIncome(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Transaction totals failed", "error", err)
		http.Error(w, "failed to load transactions", http.StatusInternalServerError)
		return
	}
	totalExpenses, err := s.txs.TotalExpenses(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Transaction totals failed", "error", err)
		http.Error(w, "failed to load transactions", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "transactions.html", map[string]any{
		"transactions":  transactions,
		"selectedType":  string(selected),
		"totalIncome":   totalIncome,
		"totalExpenses": totalExpenses,
		"totalBalance":  totalIncome.Sub(totalExpenses),
	})
}

func (s *Server) handleTransactionSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	t, formErr := transactionFromForm(r)
	if formErr != "" {
		s.renderTransactionForm(w, r, t, formErr)
		return
	}

	if _, err := s.txs.Save(r.Context(), t); err != nil {
		if isValidationError(err) {
			s.renderTransactionForm(w, r, t, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Transaction save failed", "error", err)
		http.Error(w, "failed to save transaction", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/transactions", http.StatusSeeOther)
}

// handleTransactionRoutes dispatches /transactions/new,
// /transactions/{id}/edit and /transactions/{id}/delete.
func (s *Server) handleTransactionRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/transactions/"), "/")

	if rest == "new" {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.renderTransactionForm(w, r, core.Transaction{}, "")
		return
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	switch parts[1] {
	case "edit":
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.handleTransactionEdit(w, r, id)
	case "delete":
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.handleTransactionDelete(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleTransactionEdit(w http.ResponseWriter, r *http.Request, id int64) {
	t, err := s.txs.GetByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		// Editing a vanished record falls back to the list.
		http.Redirect(w, r, "/transactions", http.StatusSeeOther)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction lookup failed", "error", err, "id", id)
		http.Error(w, "failed to load transaction", http.StatusInternalServerError)
		return
	}
	s.renderTransactionForm(w, r, t, "")
}

func (s *Server) handleTransactionDelete(w http.ResponseWriter, r *http.Request, id int64) {
	if err := s.txs.Delete(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Transaction delete failed", "error", err, "id", id)
		http.Error(w, "failed to delete transaction", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/transactions", http.StatusSeeOther)
}

func (s *Server) renderTransactionForm(w http.ResponseWriter, r *http.Request, t core.Transaction, formError string) {
	title := "Add Transaction"
	if t.ID != 0 {
		title = "Edit Transaction"
	}
	if formError != "" {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	s.render(w, r, "transaction_form.html", map[string]any{
		"transaction": t,
		"formTitle":   title,
		"error":       formError,
	})
}

// transactionFromForm builds a transaction from posted form values. It
// returns a non-empty message for parse failures; Validate covers the rest.
func transactionFromForm(r *http.Request) (core.Transaction, string) {
	t := core.Transaction{
		Name:     sanitizeInput(r.Form.Get("name")),
		Type:     core.ParseType(r.Form.Get("type")),
		Category: sanitizeInput(r.Form.Get("category")),
		Note:     sanitizeInput(r.Form.Get("note")),
	}

	if v := strings.TrimSpace(r.Form.Get("id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return t, "invalid transaction id"
		}
		t.ID = id
	}

	cents, err := core.ParseDecimalToCents(strings.TrimSpace(r.Form.Get("amount")))
	if err != nil {
		return t, "invalid amount"
	}
	t.Amount = core.Money{Cents: cents}

	date, err := core.ParseDate(strings.TrimSpace(r.Form.Get("date")))
	if err != nil {
		return t, "invalid date"
	}
	t.Date = date

	return t, ""
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrEmptyName) ||
		errors.Is(err, core.ErrNameTooLong) ||
		errors.Is(err, core.ErrNoteTooLong)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
