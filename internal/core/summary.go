package core

// Stats is the derived snapshot of a user's expense list.
type Stats struct {
	Total      Money            `json:"total"`
	Count      int              `json:"count"`
	ByCategory map[string]Money `json:"byCategory"`
}

// Bucket is an amount aggregated over a time period.
type Bucket struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Amount Money  `json:"amount"`
}

// CategoryShare is one slice of the category breakdown.
type CategoryShare struct {
	Category string  `json:"category"`
	Amount   Money   `json:"amount"`
	Percent  float64 `json:"percent"`
}

// BudgetProgress compares spend-to-date against a monthly target.
type BudgetProgress struct {
	Spent           Money   `json:"spent"`
	Remaining       Money   `json:"remaining"`
	ProgressPercent float64 `json:"progressPercent"`
	IsOverBudget    bool    `json:"isOverBudget"`
}

// BudgetStatus pairs a budget with its progress.
type BudgetStatus struct {
	Budget
	BudgetProgress
}

// BudgetSummary totals every budget of one month. Remaining is TotalBudgeted
// minus TotalSpent and may be negative.
type BudgetSummary struct {
	Month         string `json:"month"`
	TotalBudgeted Money  `json:"totalBudgeted"`
	TotalSpent    Money  `json:"totalSpent"`
	Remaining     Money  `json:"remaining"`
	OverBudget    int    `json:"overBudget"`
}
