package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregatesEmpty(t *testing.T) {
	assert.Equal(t, 0, TotalClasses(nil))
	assert.Equal(t, Amount(0), TotalAnnualSum(nil))
	assert.Equal(t, Amount(0), AverageAnnual(nil))
	assert.Equal(t, FeeSummary{}, Summarize([]FeeRecord{}))
}

func TestAggregatesReferenceScenario(t *testing.T) {
	records := []FeeRecord{
		{ClassName: "Class 9", AdmissionFee: 15000, MonthlyFee: 8000, OtherCharges: 5000, IsActive: true},
		{ClassName: "Class 10", AdmissionFee: 15000, MonthlyFee: 9000, OtherCharges: 10000, IsActive: true},
	}

	s := Summarize(records)
	assert.Equal(t, 2, s.TotalClasses)
	assert.Equal(t, "Rs. 249,000", s.TotalAnnualSum.String())
	assert.Equal(t, "Rs. 124,500", s.AverageAnnual.String())

	assert.Equal(t, s.TotalClasses, TotalClasses(records))
	assert.Equal(t, s.TotalAnnualSum, TotalAnnualSum(records))
	assert.Equal(t, s.AverageAnnual, AverageAnnual(records))
}

func TestAggregatesIgnoreStaleTotals(t *testing.T) {
	records := []FeeRecord{
		{AdmissionFee: 100, MonthlyFee: 10, TotalAnnual: 5, IsActive: true},
	}
	assert.Equal(t, Amount(220), TotalAnnualSum(records))
}

func TestAggregatesActivePolicy(t *testing.T) {
	records := []FeeRecord{
		{MonthlyFee: 1000, IsActive: true},
		{MonthlyFee: 2000, IsActive: false},
		{MonthlyFee: 3000, IsActive: true},
	}

	active := DefaultAggregatePolicy.Summarize(records)
	assert.Equal(t, 2, active.TotalClasses)
	assert.Equal(t, Amount(48000), active.TotalAnnualSum)
	assert.Equal(t, Amount(24000), active.AverageAnnual)

	all := AggregatePolicy{ActiveOnly: false}.Summarize(records)
	assert.Equal(t, 3, all.TotalClasses)
	assert.Equal(t, Amount(72000), all.TotalAnnualSum)
}

func TestAverageRoundsHalfUp(t *testing.T) {
	records := []FeeRecord{
		{AdmissionFee: 1, IsActive: true},
		{AdmissionFee: 2, IsActive: true},
	}
	// 3 / 2 = 1.5 -> 2
	assert.Equal(t, Amount(2), AverageAnnual(records))

	records = append(records, FeeRecord{IsActive: true})
	// 3 / 3 = 1
	assert.Equal(t, Amount(1), AverageAnnual(records))
}

func TestAggregatesMalformedRecordContributesZero(t *testing.T) {
	var bad FeeRecord
	_ = bad.UnmarshalJSON([]byte(`{"className":"Broken","admissionFee":"n/a","monthlyFee":"tbd"}`))
	good := FeeRecord{AdmissionFee: 15000, MonthlyFee: 8000, OtherCharges: 5000, IsActive: true}

	s := Summarize([]FeeRecord{good, bad})
	assert.Equal(t, 2, s.TotalClasses)
	assert.Equal(t, Amount(116000), s.TotalAnnualSum)
	assert.Equal(t, Amount(58000), s.AverageAnnual)
}

func TestAggregatesSaturateInsteadOfWrapping(t *testing.T) {
	records := []FeeRecord{
		{ClassName: "A", MonthlyFee: 800_000_000_000_000_000, IsActive: true},
		{ClassName: "B", MonthlyFee: 800_000_000_000_000_000, IsActive: true},
	}
	s := Summarize(records)
	assert.Equal(t, Amount(math.MaxInt64), s.TotalAnnualSum)
	assert.Equal(t, TotalAnnualSum(records), s.TotalAnnualSum)
	assert.Equal(t, Amount(math.MaxInt64/2+1), s.AverageAnnual)
	assert.Positive(t, int64(s.AverageAnnual))
}
