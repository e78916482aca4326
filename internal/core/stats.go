package core

// Statistics are derived from the currently loaded result set, never from
// server-side aggregates.
type Statistics struct {
	Count   int
	Income  Money
	Expense Money
	Balance Money
}

// ComputeStatistics sums the loaded transactions by type tag. Transfers count
// toward Count but move no money between income and expense. Pure: the input
// slice is not modified and equal inputs yield equal outputs.
func ComputeStatistics(list []Transaction) Statistics {
	s := Statistics{Count: len(list)}
	for _, t := range list {
		switch t.Type {
		case Income:
			s.Income.Cents += t.Amount.Cents
		case Expense:
			s.Expense.Cents += t.Amount.Cents
		}
	}
	s.Balance = s.Income.Sub(s.Expense)
	return s
}
