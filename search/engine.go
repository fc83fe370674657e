// Package search filters in-memory record collections with combinable keyword, category,
// rating and date predicates.
package search

// AdvancedSearch returns the records matching cond in their original order. The input slice
// is never modified.
//
// With OperatorAnd every active predicate must hold. With OperatorOr a record is kept when
// any active predicate holds for it, matched by record ID. When no predicate is active the
// whole input is returned for both operators. Unknown operators behave like OperatorAnd.
func AdvancedSearch[R Record](cond Condition, records []R) []R {
	predicates := cond.predicates()
	if len(predicates) == 0 {
		return append(make([]R, 0, len(records)), records...)
	}

	if cond.Operator == OperatorOr {
		return matchAny(predicates, records)
	}

	return matchAll(predicates, records)
}

func matchAll[R Record](predicates []predicate, records []R) []R {
	working := append(make([]R, 0, len(records)), records...)
	for _, matches := range predicates {
		narrowed := working[:0]
		for _, record := range working {
			if matches(record.SearchFields()) {
				narrowed = append(narrowed, record)
			}
		}
		working = narrowed
	}

	return working
}

func matchAny[R Record](predicates []predicate, records []R) []R {
	matchedIDs := make(map[string]struct{})
	for _, matches := range predicates {
		for _, record := range records {
			fields := record.SearchFields()
			if matches(fields) {
				matchedIDs[fields.ID] = struct{}{}
			}
		}
	}

	result := make([]R, 0, len(matchedIDs))
	for _, record := range records {
		if _, ok := matchedIDs[record.SearchFields().ID]; ok {
			result = append(result, record)
		}
	}

	return result
}

// ResultCount is the number of records in a search result; zero for nil or empty results.
func ResultCount[R any](records []R) int {
	return len(records)
}
