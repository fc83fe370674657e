package search

import (
	"strings"
	"time"
)

// Operator decides how active predicates are combined.
type Operator string

const (
	OperatorAnd Operator = "AND"
	OperatorOr  Operator = "OR"
)

func (o Operator) IsValid() bool {
	return o == OperatorAnd || o == OperatorOr
}

// RatingRange is an inclusive rating bound. A range with Min > Max matches nothing.
type RatingRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DateRange is an inclusive bound on a record's creation time.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Condition is a declarative filter. Empty fields are inactive: a blank keyword, an empty
// category list or a nil range.
type Condition struct {
	Keyword    string       `json:"keyword,omitempty"`
	Operator   Operator     `json:"operator"`
	Categories []string     `json:"category,omitempty"`
	Rating     *RatingRange `json:"rating_range,omitempty"`
	Dates      *DateRange   `json:"date_range,omitempty"`
}

// Fields are the record attributes a Condition can look at.
type Fields struct {
	ID        string
	Name      string
	Category  string
	Rating    float64
	CreatedAt time.Time
}

type Record interface {
	SearchFields() Fields
}

type predicate func(Fields) bool

func (c Condition) predicates() []predicate {
	var predicates []predicate

	if strings.TrimSpace(c.Keyword) != "" {
		predicates = append(predicates, matchKeyword(c.Keyword))
	}
	if len(c.Categories) > 0 {
		predicates = append(predicates, matchCategory(c.Categories))
	}
	if c.Rating != nil {
		predicates = append(predicates, matchRating(*c.Rating))
	}
	if c.Dates != nil {
		predicates = append(predicates, matchDates(*c.Dates))
	}

	return predicates
}

func matchKeyword(keyword string) predicate {
	keyword = strings.ToLower(keyword)
	return func(f Fields) bool {
		return strings.Contains(strings.ToLower(f.Name), keyword)
	}
}

func matchCategory(categories []string) predicate {
	set := make(map[string]struct{}, len(categories))
	for _, category := range categories {
		set[category] = struct{}{}
	}
	return func(f Fields) bool {
		_, ok := set[f.Category]
		return ok
	}
}

func matchRating(r RatingRange) predicate {
	return func(f Fields) bool {
		return f.Rating >= r.Min && f.Rating <= r.Max
	}
}

func matchDates(d DateRange) predicate {
	return func(f Fields) bool {
		return !f.CreatedAt.Before(d.Start) && !f.CreatedAt.After(d.End)
	}
}
