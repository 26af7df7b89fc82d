package investments

// Insights is the read-only aggregation over the full account
// collection.
type Insights struct {
	Totals        float64            `json:"totals"`
	ByInstitution map[string]float64 `json:"byInstitution"`
	BySector      map[string]float64 `json:"bySector"`
	TopHolding    *TopHolding        `json:"topHolding"`
}

// TopHolding is the single largest position across all accounts.
type TopHolding struct {
	Holding
	PositionValue float64 `json:"position"`
}

// ComputeInsights folds over the accounts, summing balances, grouping
// balances by institution and position values by sector (missing
// sector bucketed as "Other"), and tracking the largest position.
// Ties on position value keep the first holding encountered.
func ComputeInsights(accounts []InvestmentAccount) *Insights {
	insights := &Insights{
		ByInstitution: map[string]float64{},
		BySector:      map[string]float64{},
	}

	for _, account := range accounts {
		insights.Totals += account.Balance
		insights.ByInstitution[account.Institution] += account.Balance

		for _, holding := range account.Holdings {
			sector := holding.Sector
			if sector == "" {
				sector = "Other"
			}
			position := holding.Position()
			insights.BySector[sector] += position

			if insights.TopHolding == nil || position > insights.TopHolding.PositionValue {
				insights.TopHolding = &TopHolding{Holding: holding, PositionValue: position}
			}
		}
	}

	return insights
}
