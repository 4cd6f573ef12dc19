package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
	"github.com/simaogato/wealthtrack-backend/internal/usecase/valuation"
)

// DefaultTrendMonths is the cash-flow trend length used when none is requested
const DefaultTrendMonths = 6

const (
	monthKeyLayout   = "2006-01"
	monthLabelLayout = "Jan"
	dayLabelLayout   = "Jan 02"
)

var hundred = decimal.NewFromInt(100)

// Segment is one slice of the asset allocation
type Segment struct {
	Name       string
	Value      decimal.Decimal
	Percentage decimal.Decimal
}

// MonthlyFlow is the income and expense of one calendar month
type MonthlyFlow struct {
	Month   string // 2006-01
	Label   string // Jan
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// CategoryShare is the spending of one category over a period
type CategoryShare struct {
	Name       string
	Value      decimal.Decimal
	Percentage decimal.Decimal
}

// CategoryBreakdown groups the expenses of a period by category
type CategoryBreakdown struct {
	Items []CategoryShare
	Total decimal.Decimal
}

// DailySpend is the total spent on one calendar day
type DailySpend struct {
	Date   string // 2006-01-02
	Label  string // Jan 02
	Amount decimal.Decimal
}

// MonthlySummary is the cash flow of a single month
type MonthlySummary struct {
	Income      decimal.Decimal
	Expenses    decimal.Decimal
	SavingsRate decimal.Decimal // Percent of income kept
}

// Service derives chart series from a record set
// Every method is a pure read; empty input yields empty series, never an error
type Service struct {
	Aggregator *valuation.Aggregator
	Clock      func() time.Time
}

// NewService creates a new analytics Service instance
func NewService(aggregator *valuation.Aggregator) *Service {
	return &Service{
		Aggregator: aggregator,
		Clock:      time.Now,
	}
}

// AssetAllocation splits the current totals into Investments, Crypto and Cash
// Segments worth zero or less are dropped
func (s *Service) AssetAllocation(data *domain.FinancialData) []Segment {
	totals := s.Aggregator.CalculateTotals(data)

	candidates := []Segment{
		{Name: "Investments", Value: totals.TotalInvestments},
		{Name: "Crypto", Value: totals.TotalCrypto},
		{Name: "Cash", Value: totals.TotalLiquidity},
	}

	total := decimal.Zero
	segments := make([]Segment, 0, len(candidates))
	for _, seg := range candidates {
		if !seg.Value.IsPositive() {
			continue
		}
		total = total.Add(seg.Value)
		segments = append(segments, seg)
	}

	for i := range segments {
		segments[i].Percentage = percentage(segments[i].Value, total)
	}

	return segments
}

// CashFlowTrend sums income and expense for each of the trailing months, oldest first
// The current month is the last point. Months without activity are zero-filled.
func (s *Service) CashFlowTrend(data *domain.FinancialData, months int) []MonthlyFlow {
	if data == nil || len(data.Transactions) == 0 {
		return []MonthlyFlow{}
	}
	if months <= 0 {
		months = DefaultTrendMonths
	}

	// Calendar day in the clock's own zone, as period filtering does
	today := domain.CalendarDay(s.Clock())
	current := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	flows := make([]MonthlyFlow, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		month := current.AddDate(0, i-months+1, 0)
		key := month.Format(monthKeyLayout)
		flows[i] = MonthlyFlow{
			Month:   key,
			Label:   month.Format(monthLabelLayout),
			Income:  decimal.Zero,
			Expense: decimal.Zero,
		}
		index[key] = i
	}

	for i := range data.Transactions {
		tx := &data.Transactions[i]
		pos, ok := index[tx.Date.Format(monthKeyLayout)]
		if !ok {
			continue
		}
		if tx.IsIncome() {
			flows[pos].Income = flows[pos].Income.Add(tx.Amount)
		} else if tx.IsExpense() {
			flows[pos].Expense = flows[pos].Expense.Add(tx.Amount)
		}
	}

	return flows
}

// ExpensesByCategory groups the expenses of the period by category, biggest first
func (s *Service) ExpensesByCategory(data *domain.FinancialData, period domain.Period) CategoryBreakdown {
	breakdown := CategoryBreakdown{
		Items: []CategoryShare{},
		Total: decimal.Zero,
	}
	if data == nil {
		return breakdown
	}

	now := s.Clock()
	grouped := make(map[string]decimal.Decimal)
	for i := range data.Transactions {
		tx := &data.Transactions[i]
		if !tx.IsExpense() || !period.Contains(tx.Date, now) {
			continue
		}
		grouped[tx.Category] = grouped[tx.Category].Add(tx.Amount)
		breakdown.Total = breakdown.Total.Add(tx.Amount)
	}

	for name, value := range grouped {
		breakdown.Items = append(breakdown.Items, CategoryShare{
			Name:       name,
			Value:      value,
			Percentage: percentage(value, breakdown.Total),
		})
	}

	sort.Slice(breakdown.Items, func(i, j int) bool {
		a, b := breakdown.Items[i], breakdown.Items[j]
		if a.Value.Equal(b.Value) {
			return a.Name < b.Name
		}
		return a.Value.GreaterThan(b.Value)
	})

	return breakdown
}

// SpendingTimeline sums the expenses of the period per calendar day, oldest first
// For 30d every day from today-30 to today is present, zero-filled; longer periods
// only list days with spending.
func (s *Service) SpendingTimeline(data *domain.FinancialData, period domain.Period) []DailySpend {
	if data == nil || len(data.Transactions) == 0 {
		return []DailySpend{}
	}

	now := s.Clock()
	days := make(map[time.Time]decimal.Decimal)

	if period == domain.Period30Days {
		today := domain.CalendarDay(now)
		for i := 30; i >= 0; i-- {
			days[today.AddDate(0, 0, -i)] = decimal.Zero
		}
	}

	for i := range data.Transactions {
		tx := &data.Transactions[i]
		if !tx.IsExpense() || !period.Contains(tx.Date, now) {
			continue
		}
		day := domain.CalendarDay(tx.Date)
		days[day] = days[day].Add(tx.Amount)
	}

	ordered := make([]time.Time, 0, len(days))
	for day := range days {
		ordered = append(ordered, day)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })

	timeline := make([]DailySpend, 0, len(ordered))
	for _, day := range ordered {
		timeline = append(timeline, DailySpend{
			Date:   day.Format(domain.DateLayout),
			Label:  day.Format(dayLabelLayout),
			Amount: days[day],
		})
	}

	return timeline
}

// MonthlyCashFlow returns the income, expenses and savings rate of the calendar month containing month
func (s *Service) MonthlyCashFlow(data *domain.FinancialData, month time.Time) MonthlySummary {
	summary := MonthlySummary{
		Income:      decimal.Zero,
		Expenses:    decimal.Zero,
		SavingsRate: decimal.Zero,
	}
	if data == nil {
		return summary
	}

	key := month.Format(monthKeyLayout)
	for i := range data.Transactions {
		tx := &data.Transactions[i]
		if tx.Date.Format(monthKeyLayout) != key {
			continue
		}
		if tx.IsIncome() {
			summary.Income = summary.Income.Add(tx.Amount)
		} else if tx.IsExpense() {
			summary.Expenses = summary.Expenses.Add(tx.Amount)
		}
	}

	if summary.Income.IsPositive() {
		summary.SavingsRate = summary.Income.Sub(summary.Expenses).Div(summary.Income).Mul(hundred)
	}

	return summary
}

func percentage(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred)
}
