package core

// FeeSummary is the footer shown under the fee table.
type FeeSummary struct {
	TotalClasses   int    `json:"totalClasses"`
	TotalAnnualSum Amount `json:"totalAnnualSum"`
	AverageAnnual  Amount `json:"averageAnnual"`
}

// AggregatePolicy selects which records the aggregates count.
type AggregatePolicy struct {
	// ActiveOnly skips records whose IsActive is false.
	ActiveOnly bool
}

// DefaultAggregatePolicy counts active records only.
var DefaultAggregatePolicy = AggregatePolicy{ActiveOnly: true}

func (p AggregatePolicy) include(r FeeRecord) bool {
	return !p.ActiveOnly || r.IsActive
}

// TotalClasses counts the records the policy includes.
func (p AggregatePolicy) TotalClasses(records []FeeRecord) int {
	n := 0
	for _, r := range records {
		if p.include(r) {
			n++
		}
	}
	return n
}

// TotalAnnualSum adds the freshly computed TotalAnnual of each included record.
// Stored TotalAnnual values are ignored. The sum saturates at math.MaxInt64.
func (p AggregatePolicy) TotalAnnualSum(records []FeeRecord) Amount {
	var sum Amount
	for _, r := range records {
		if p.include(r) {
			sum = addAmounts(sum, r.WithDerived().TotalAnnual)
		}
	}
	return sum
}

// AverageAnnual is TotalAnnualSum / TotalClasses rounded half up, or 0 when
// no record is included.
func (p AggregatePolicy) AverageAnnual(records []FeeRecord) Amount {
	return averageOf(p.TotalAnnualSum(records), p.TotalClasses(records))
}

// Summarize computes all three aggregates in one pass.
func (p AggregatePolicy) Summarize(records []FeeRecord) FeeSummary {
	var s FeeSummary
	for _, r := range records {
		if !p.include(r) {
			continue
		}
		s.TotalClasses++
		s.TotalAnnualSum = addAmounts(s.TotalAnnualSum, r.WithDerived().TotalAnnual)
	}
	s.AverageAnnual = averageOf(s.TotalAnnualSum, s.TotalClasses)
	return s
}

func averageOf(sum Amount, count int) Amount {
	if count == 0 {
		return 0
	}
	n := Amount(count)
	return sum/n + (sum%n+n/2)/n
}

// TotalClasses applies DefaultAggregatePolicy.
func TotalClasses(records []FeeRecord) int {
	return DefaultAggregatePolicy.TotalClasses(records)
}

// TotalAnnualSum applies DefaultAggregatePolicy.
func TotalAnnualSum(records []FeeRecord) Amount {
	return DefaultAggregatePolicy.TotalAnnualSum(records)
}

// AverageAnnual applies DefaultAggregatePolicy.
func AverageAnnual(records []FeeRecord) Amount {
	return DefaultAggregatePolicy.AverageAnnual(records)
}

// Summarize applies DefaultAggregatePolicy.
func Summarize(records []FeeRecord) FeeSummary {
	return DefaultAggregatePolicy.Summarize(records)
}
