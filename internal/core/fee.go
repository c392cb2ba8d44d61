package core

import (
	"encoding/json"
	"strings"
	"time"
)

// MonthsPerYear is the multiplier from the monthly to the annual fee.
const MonthsPerYear = 12

type (
	// Category is a school tier. The data layer stores free text; Category
	// only drives display.
	Category string

	// BadgeStyle is how a category badge renders.
	BadgeStyle struct {
		Label      string `json:"label"`
		Background string `json:"background"`
		Text       string `json:"text"`
	}

	// FeeRecord is the fee schedule for one class and category.
	//
	// AnnualFee and TotalAnnual are derived. Whatever storage or a client
	// sends for them is discarded; call WithDerived before displaying.
	FeeRecord struct {
		ID           int64     `json:"id"`
		ClassName    string    `json:"className"`
		Category     string    `json:"category"`
		AdmissionFee Amount    `json:"admissionFee"`
		MonthlyFee   Amount    `json:"monthlyFee"`
		OtherCharges Amount    `json:"otherCharges"`
		AnnualFee    Amount    `json:"annualFee"`
		TotalAnnual  Amount    `json:"totalAnnual"`
		Description  string    `json:"description"`
		IsActive     bool      `json:"isActive"`
		Version      int64     `json:"version,omitempty"`
		UpdatedAt    time.Time `json:"updatedAt"`
	}

	// FeeBreakdown holds the two derived amounts of a record.
	FeeBreakdown struct {
		AnnualFee   Amount
		TotalAnnual Amount
	}
)

const (
	CategoryPreSchool       Category = "Pre-School"
	CategoryPrimary         Category = "Primary"
	CategoryMiddleSchool    Category = "Middle School"
	CategorySecondary       Category = "Secondary"
	CategoryHigherSecondary Category = "Higher Secondary"
	CategoryUnknown         Category = "Unknown"
)

// Categories lists the known tiers in display order.
var Categories = []Category{
	CategoryPreSchool,
	CategoryPrimary,
	CategoryMiddleSchool,
	CategorySecondary,
	CategoryHigherSecondary,
}

// ParseCategory maps free text onto a known tier, ignoring case and
// surrounding space. Anything else is CategoryUnknown.
func ParseCategory(s string) Category {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c
		}
	}
	return CategoryUnknown
}

// Badge returns the display style for the category. It is defined for every
// value, including CategoryUnknown and values never produced by ParseCategory.
func (c Category) Badge() BadgeStyle {
	switch c {
	case CategoryPreSchool:
		return BadgeStyle{Label: string(c), Background: "bg-pink-100", Text: "text-pink-800"}
	case CategoryPrimary:
		return BadgeStyle{Label: string(c), Background: "bg-blue-100", Text: "text-blue-800"}
	case CategoryMiddleSchool:
		return BadgeStyle{Label: string(c), Background: "bg-green-100", Text: "text-green-800"}
	case CategorySecondary:
		return BadgeStyle{Label: string(c), Background: "bg-purple-100", Text: "text-purple-800"}
	case CategoryHigherSecondary:
		return BadgeStyle{Label: string(c), Background: "bg-orange-100", Text: "text-orange-800"}
	default:
		return BadgeStyle{Label: string(CategoryUnknown), Background: "bg-gray-100", Text: "text-gray-800"}
	}
}

// ComputeFees derives the annual and total annual amounts from the base fields.
// It is pure and total; results saturate at math.MaxInt64 instead of wrapping.
func ComputeFees(admission, monthly, other Amount) FeeBreakdown {
	annual := mulAmount(monthly, MonthsPerYear)
	return FeeBreakdown{
		AnnualFee:   annual,
		TotalAnnual: addAmounts(addAmounts(admission, annual), other),
	}
}

// ComputeFeeStrings is ComputeFees over formatted inputs, returning formatted
// outputs. "" and malformed inputs count as zero.
func ComputeFeeStrings(admission, monthly, other string) (annualFee, totalAnnual string) {
	b := ComputeFees(ParseAmountValue(admission), ParseAmountValue(monthly), ParseAmountValue(other))
	return b.AnnualFee.String(), b.TotalAnnual.String()
}

// WithDerived returns a copy with AnnualFee and TotalAnnual recomputed.
// Stored derived values are reset to zero first and never read.
func (r FeeRecord) WithDerived() FeeRecord {
	r.AnnualFee, r.TotalAnnual = 0, 0
	b := ComputeFees(r.AdmissionFee, r.MonthlyFee, r.OtherCharges)
	r.AnnualFee = b.AnnualFee
	r.TotalAnnual = b.TotalAnnual
	return r
}

// Tier returns the record's category as a known tier or CategoryUnknown.
func (r FeeRecord) Tier() Category {
	return ParseCategory(r.Category)
}

// Validate checks the fields an administrator must supply.
func (r FeeRecord) Validate() error {
	if strings.TrimSpace(r.ClassName) == "" {
		return ErrEmptyClassName
	}
	if len(r.ClassName) > 100 {
		return ErrClassNameTooLong
	}
	if len(r.Description) > 1000 {
		return ErrDescriptionTooLong
	}
	if r.AdmissionFee > MaxAmount || r.MonthlyFee > MaxAmount || r.OtherCharges > MaxAmount {
		return ErrAmountTooLarge
	}
	return nil
}

// RecomputeAll applies WithDerived to every record.
func RecomputeAll(records []FeeRecord) []FeeRecord {
	out := make([]FeeRecord, len(records))
	for i, r := range records {
		out[i] = r.WithDerived()
	}
	return out
}

// UnmarshalJSON decodes a fee record from the shape the admin pages send.
// Missing fields become zero values, a missing isActive means active, and
// any annualFee or totalAnnual in the payload is dropped. The id may be a
// number or a numeric string; updatedAt is owned by storage and ignored.
func (r *FeeRecord) UnmarshalJSON(b []byte) error {
	type plain FeeRecord
	aux := struct {
		*plain
		ID        json.RawMessage `json:"id"`
		IsActive  *bool           `json:"isActive"`
		UpdatedAt json.RawMessage `json:"updatedAt"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	var id Amount
	_ = id.UnmarshalJSON(aux.ID)
	r.ID = int64(id)
	r.IsActive = aux.IsActive == nil || *aux.IsActive
	r.AnnualFee, r.TotalAnnual = 0, 0
	return nil
}
