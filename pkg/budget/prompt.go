package budget

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const battlePlanTemplate = `Act as a Supreme Financial Architect.
User: Income $%s, Spend $%s, Debt $%s (%s%%), Goal: "%s".
Trends: Food is %s, Misc is %s.
Cash Flow: $%s/mo.

Create a Battle Plan (Markdown):
1. **Reality Check:** Can they afford the goal?
2. **The Cuts:** Specific dollar amounts to cut from Food/Misc.
3. **The Strategy:** How to attack the debt or build savings.
4. **Tone:** Ruthless but encouraging.`

// BuildPrompt renders the generation prompt for one analysis. The output
// depends only on its arguments.
func BuildPrompt(s Snapshot, m Metrics, food, misc TrendResult) string {
	return fmt.Sprintf(battlePlanTemplate,
		formatMoney(s.Income),
		formatMoney(m.TotalSpend),
		formatMoney(s.Debt),
		formatRate(s.InterestRate),
		s.Goal,
		food.Status,
		misc.Status,
		formatMoney(m.CashFlow),
	)
}

func formatMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func formatRate(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}
