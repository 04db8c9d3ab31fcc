package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/j-veylop/manx-utilities-tui/internal/ui/styles"
)

// BudgetBar shows today's spend against the daily budget.
type BudgetBar struct {
	progress progress.Model
	spent    float64
	budget   float64
}

// NewBudgetBar creates a bar of the given width.
func NewBudgetBar(width int) BudgetBar {
	return BudgetBar{
		progress: progress.New(
			progress.WithScaledGradient("#51cf66", "#ff6b6b"),
			progress.WithWidth(width),
			progress.WithoutPercentage(),
		),
	}
}

// Set updates spend and budget, both in pounds.
func (b *BudgetBar) Set(spent, budget float64) {
	b.spent = spent
	b.budget = budget
}

// SetWidth resizes the bar.
func (b *BudgetBar) SetWidth(width int) {
	b.progress.Width = max(width, 10)
}

// Percent returns spend as a percentage of the budget, 0 without a budget.
func (b BudgetBar) Percent() float64 {
	if b.budget <= 0 {
		return 0
	}
	return b.spent / b.budget * 100
}

// View renders the bar with its caption. It is empty without a budget.
func (b BudgetBar) View() string {
	if b.budget <= 0 {
		return ""
	}
	pct := b.Percent()
	caption := styles.GetBudgetStyle(pct).Render(fmt.Sprintf("£%.2f of £%.2f (%.0f%%)", b.spent, b.budget, pct))
	return b.progress.ViewAs(min(pct/100, 1)) + " " + caption
}
