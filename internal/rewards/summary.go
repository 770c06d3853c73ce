package rewards

import (
	"math/big"
	"sort"
)

// Bucket aggregates principal and projected reward over one period.
type Bucket struct {
	Period    string // "2026-01" for months, "2026" for years
	Principal *big.Int
	Reward    *big.Int
	Count     int
}

// Summary groups estimates by lock-end month and year, plus grand totals.
// Positions with no lock end (flexible) fall outside every bucket but still
// count toward the totals.
type Summary struct {
	Months         []Bucket // ascending by period
	Years          []Bucket // ascending by period
	TotalPrincipal *big.Int
	TotalReward    *big.Int
	PositionCount  int
}

// Summarize folds estimates into monthly and yearly maturity buckets.
func Summarize(ests []Estimate) Summary {
	s := Summary{
		TotalPrincipal: new(big.Int),
		TotalReward:    new(big.Int),
		PositionCount:  len(ests),
	}

	months := make(map[string]*Bucket)
	years := make(map[string]*Bucket)
	for _, est := range ests {
		if est.Position.Principal != nil {
			s.TotalPrincipal.Add(s.TotalPrincipal, est.Position.Principal)
		}
		s.TotalReward.Add(s.TotalReward, est.Reward)

		month := est.Position.LockEndMonth
		if month == "" {
			continue
		}
		addToBucket(months, month, est)
		addToBucket(years, month[:4], est)
	}

	s.Months = sortBuckets(months)
	s.Years = sortBuckets(years)
	return s
}

func addToBucket(buckets map[string]*Bucket, period string, est Estimate) {
	b, ok := buckets[period]
	if !ok {
		b = &Bucket{Period: period, Principal: new(big.Int), Reward: new(big.Int)}
		buckets[period] = b
	}
	if est.Position.Principal != nil {
		b.Principal.Add(b.Principal, est.Position.Principal)
	}
	b.Reward.Add(b.Reward, est.Reward)
	b.Count++
}

func sortBuckets(buckets map[string]*Bucket) []Bucket {
	out := make([]Bucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	// YYYY-MM and YYYY both sort correctly as strings.
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}
