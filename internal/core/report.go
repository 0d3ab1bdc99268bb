package core

import "sort"

// CategoryTotal holds a category label and the summed expense amount for it.
type CategoryTotal struct {
	Category string
	Total    Money
}

// The functions below form the aggregation engine. Every one of them takes
// the full date-descending snapshot of the transaction table as its working
// set and performs a single linear pass; nothing here caches or mutates the
// input slice.

// TotalByType sums the amounts of all transactions whose type matches t
// case-insensitively. Transactions with an unrecognized type contribute to
// neither the income nor the expense total.
func TotalByType(txs []Transaction, t TransactionType) Money {
	var sum Money
	for _, tx := range txs {
		if tx.Type.Matches(t) {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum
}

// MonthlyTotalByType sums amounts of the given type restricted to the given
// calendar month. Transactions with an absent date are excluded.
func MonthlyTotalByType(txs []Transaction, month YearMonth, t TransactionType) Money {
	var sum Money
	for _, tx := range txs {
		if tx.Date.InMonth(month) && tx.Type.Matches(t) {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum
}

// TopExpenseCategories groups the month's EXPENSE transactions by category
// (empty category counts as "Other"), sums each group and returns the top
// groups sorted by total descending, truncated to limit.
//
// Equal totals keep first-encountered order from the snapshot, so the result
// is deterministic for identical input ordering.
func TopExpenseCategories(txs []Transaction, month YearMonth, limit int) []CategoryTotal {
	totals := make(map[string]int64)
	var order []string
	for _, tx := range txs {
		if !tx.Date.InMonth(month) || !tx.Type.Matches(Expense) {
			continue
		}
		cat := tx.Category
		if cat == "" {
			cat = "Other"
		}
		if _, seen := totals[cat]; !seen {
			order = append(order, cat)
		}
		totals[cat] += tx.Amount.Cents
	}

	out := make([]CategoryTotal, 0, len(order))
	for _, cat := range order {
		out = append(out, CategoryTotal{Category: cat, Total: Money{Cents: totals[cat]}})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.Cents > out[j].Total.Cents
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Recent returns the first limit transactions of the snapshot, i.e. the most
// recent ones given date-descending input.
func Recent(txs []Transaction, limit int) []Transaction {
	if limit < 0 || limit > len(txs) {
		limit = len(txs)
	}
	out := make([]Transaction, limit)
	copy(out, txs[:limit])
	return out
}

// FilterByType returns the snapshot unfiltered when t is blank, otherwise
// only the transactions whose type matches t case-insensitively, preserving
// the snapshot order.
func FilterByType(txs []Transaction, t TransactionType) []Transaction {
	if t == "" {
		out := make([]Transaction, len(txs))
		copy(out, txs)
		return out
	}
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Type.Matches(t) {
			out = append(out, tx)
		}
	}
	return out
}
