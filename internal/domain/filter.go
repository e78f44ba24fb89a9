package domain

import "github.com/samber/lo"

// TempRange is an inclusive [Lo, Hi] mean-temperature window. An inverted
// range (Lo > Hi) matches nothing by definition: interactive range controls
// transiently produce it and it must not be an error.
type TempRange struct {
	Lo float64
	Hi float64
}

// Contains reports whether v falls inside the range.
func (tr TempRange) Contains(v float64) bool { return v >= tr.Lo && v <= tr.Hi }

// Filter is a compound AND of optional predicates over a district table.
// Zero-valued fields are no-ops. An unknown department simply matches no row.
type Filter struct {
	Department string     // exact department match; "" matches all
	Range      *TempRange // mean within the inclusive window
	MaxMean    *float64   // user-chosen threshold: mean ≤ MaxMean
}

// Apply returns the rows matching every supplied predicate, preserving source
// order. The numeric predicates require a valid mean; rows with a missing
// mean never match them. The input table is not mutated.
func (f Filter) Apply(table DistrictTable) DistrictTable {
	return DistrictTable(lo.Filter(table, func(r DistrictRecord, _ int) bool {
		if f.Department != "" && r.Department != f.Department {
			return false
		}
		if f.Range != nil && (!r.HasMean() || !f.Range.Contains(r.Mean)) {
			return false
		}
		if f.MaxMean != nil && (!r.HasMean() || r.Mean > *f.MaxMean) {
			return false
		}
		return true
	}))
}
