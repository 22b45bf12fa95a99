package journal

import (
	"fmt"
	"strings"
)

// Visibility controls who may read a memory or period.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityFriends Visibility = "friends"
	VisibilityLists   Visibility = "lists"
	VisibilityPublic  Visibility = "public"
)

// DatePrecision records how much of a memory's date is meaningful.
type DatePrecision string

const (
	PrecisionToday     DatePrecision = "today"
	PrecisionComplete  DatePrecision = "complete"
	PrecisionMonthYear DatePrecision = "month_year"
	PrecisionYearOnly  DatePrecision = "year_only"
)

// Category classifies a memory.
type Category string

const (
	CategoryTravel    Category = "travel"
	CategoryEducation Category = "education"
	CategoryFamily    Category = "family"
	CategoryWork      Category = "work"
	CategoryPersonal  Category = "personal"
	CategoryMilestone Category = "milestone"
	CategoryOther     Category = "other"
)

// PeriodType classifies a period.
type PeriodType string

const (
	PeriodResidence    PeriodType = "residence"
	PeriodWork         PeriodType = "work"
	PeriodEducation    PeriodType = "education"
	PeriodRelationship PeriodType = "relationship"
	PeriodTravel       PeriodType = "travel"
	PeriodProject      PeriodType = "project"
	PeriodOther        PeriodType = "other"
)

var (
	validVisibility = []Visibility{VisibilityPrivate, VisibilityFriends, VisibilityLists, VisibilityPublic}
	validPrecision  = []DatePrecision{PrecisionToday, PrecisionComplete, PrecisionMonthYear, PrecisionYearOnly}
	validCategory   = []Category{CategoryTravel, CategoryEducation, CategoryFamily, CategoryWork, CategoryPersonal, CategoryMilestone, CategoryOther}
	validPeriodType = []PeriodType{PeriodResidence, PeriodWork, PeriodEducation, PeriodRelationship, PeriodTravel, PeriodProject, PeriodOther}
)

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// ValidateVisibility rejects unknown visibility values.
func ValidateVisibility(v Visibility) error {
	if !contains(validVisibility, v) {
		return fmt.Errorf("invalid visibility %q", v)
	}
	return nil
}

// ValidateMemory checks the required fields and enum values of a memory
// before it is written.
func ValidateMemory(m Memory) error {
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("title required")
	}
	if m.Date == "" {
		return fmt.Errorf("date required")
	}
	if !contains(validPrecision, m.DatePrecision) {
		return fmt.Errorf("invalid date precision %q", m.DatePrecision)
	}
	if !contains(validCategory, m.Category) {
		return fmt.Errorf("invalid category %q", m.Category)
	}
	return ValidateVisibility(m.Visibility)
}

// ValidatePeriod checks the required fields and enum values of a period.
func ValidatePeriod(p Period) error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("title required")
	}
	if p.StartDate == "" {
		return fmt.Errorf("start date required")
	}
	if p.EndDate != "" && p.EndDate < p.StartDate {
		return fmt.Errorf("end date %s before start date %s", p.EndDate, p.StartDate)
	}
	if !contains(validPeriodType, p.Type) {
		return fmt.Errorf("invalid period type %q", p.Type)
	}
	return ValidateVisibility(p.Visibility)
}
