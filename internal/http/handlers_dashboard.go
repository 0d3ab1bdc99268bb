package http

import (
	"log/slog"
	"net/http"
	"time"

	"budgetbuddy/internal/core"
)

const (
	dashboardRecentLimit        = 5
	dashboardTopCategoriesLimit = 3
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	user, _ := s.currentUser(r)
	month := core.YearMonthOf(time.Now())

	income, err := s.txs.TotalIncome(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Dashboard totals failed", "error", err)
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}
	expenses, err := s.txs.TotalExpenses(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Dashboard totals failed", "error", err)
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}
	recent, err := s.txs.GetRecent(ctx, dashboardRecentLimit)
	if err != nil {
		slog.ErrorContext(ctx, "Dashboard recent list failed", "error", err)
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}
	monthlyIncome, err := s.txs.MonthlyIncome(ctx, month)
	if err != nil {
		slog.ErrorContext(ctx, "Dashboard monthly totals failed", "error", err)
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}
	monthlyExpenses, err := s.txs.MonthlyExpenses(ctx, month)
	if err != nil {
		slog.ErrorContext(ctx, "Dashboard monthly totals failed", "error", err)
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}
	topCategories, err := s.txs.TopExpenseCategories(ctx, month, dashboardTopCategoriesLimit)
	if err != nil {
		slog.ErrorContext(ctx, "Dashboard top categories failed", "error", err)
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "dashboard.html", map[string]any{
		"user":            user,
		"income":          income,
		"expenses":        expenses,
		"balance":         income.Sub(expenses),
		"recent":          recent,
		"monthLabel":      month.Label(),
		"monthlyIncome":   monthlyIncome,
		"monthlyExpenses": monthlyExpenses,
		"monthlyBalance":  monthlyIncome.Sub(monthlyExpenses),
		"topCategories":   topCategories,
	})
}
