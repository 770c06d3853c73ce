package report

import (
	"math/big"

	"github.com/hashkey-chain/hodlium/internal/export"
)

// MonthSummary aggregates total estimated rewards maturing in one month,
// broken down by lock class. Values are ether-formatted decimal strings;
// the processed-stakes report keeps the exact base-unit figures.
type MonthSummary struct {
	ByStakeType        map[string]string `json:"byStakeType"`
	TotalMonthlyReward string            `json:"totalMonthlyReward"`
}

// Summaries is the reward-summaries report artifact.
type Summaries struct {
	MonthlySummaries map[string]MonthSummary `json:"monthlySummaries"`
	YearlySummaries  map[string]string       `json:"yearlySummaries"`
	GrandTotalReward string                  `json:"grandTotalReward"`
}

var stakeTypeRewardKeys = map[uint8]string{
	0: "monthly30Reward",
	1: "monthly90Reward",
	2: "monthly180Reward",
	3: "monthly365Reward",
}

// BuildSummaries folds processed stakes into monthly and yearly totals.
// Records that failed processing are excluded, matching their zeroed rewards.
func BuildSummaries(processed []ProcessedStake) Summaries {
	months := make(map[string]map[string]*big.Int)
	monthTotals := make(map[string]*big.Int)
	years := make(map[string]*big.Int)
	grand := new(big.Int)

	for _, p := range processed {
		if p.ProcessingError != "" || p.LockEndMonth == "" {
			continue
		}
		total, ok := new(big.Int).SetString(p.TotalEstimatedReward, 10)
		if !ok {
			continue
		}

		grand.Add(grand, total)
		addTo(monthTotals, p.LockEndMonth, total)
		addTo(years, p.LockEndMonth[:4], total)

		if key, ok := stakeTypeRewardKeys[p.StakeType]; ok {
			byType, exists := months[p.LockEndMonth]
			if !exists {
				byType = make(map[string]*big.Int)
				months[p.LockEndMonth] = byType
			}
			addTo(byType, key, total)
		}
	}

	s := Summaries{
		MonthlySummaries: make(map[string]MonthSummary, len(monthTotals)),
		YearlySummaries:  make(map[string]string, len(years)),
		GrandTotalReward: export.Ether(grand),
	}
	for month, total := range monthTotals {
		ms := MonthSummary{
			ByStakeType:        make(map[string]string),
			TotalMonthlyReward: export.Ether(total),
		}
		for key, amount := range months[month] {
			ms.ByStakeType[key] = export.Ether(amount)
		}
		s.MonthlySummaries[month] = ms
	}
	for year, total := range years {
		s.YearlySummaries[year] = export.Ether(total)
	}
	return s
}

func addTo(m map[string]*big.Int, key string, amount *big.Int) {
	if m[key] == nil {
		m[key] = new(big.Int)
	}
	m[key].Add(m[key], amount)
}
