package domain

import (
	"sort"

	"github.com/samber/lo"
)

// SortByMean returns a copy of table ordered by mean temperature. Ties break
// by ascending district name in either direction so rankings are stable under
// row permutation. Rows without a valid mean are excluded: they cannot be
// ranked.
func SortByMean(table DistrictTable, ascending bool) DistrictTable {
	rows := lo.Filter(table, func(r DistrictRecord, _ int) bool { return r.HasMean() })
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Mean != rows[j].Mean {
			if ascending {
				return rows[i].Mean < rows[j].Mean
			}
			return rows[i].Mean > rows[j].Mean
		}
		return rows[i].District < rows[j].District
	})
	return rows
}

// TopK returns the first min(k, |table|) districts by mean temperature:
// the coldest when ascending, the warmest otherwise. k ≤ 0 yields an empty
// table, never an error, because interactive controls routinely produce it.
func TopK(table DistrictTable, k int, ascending bool) DistrictTable {
	if k <= 0 {
		return DistrictTable{}
	}
	rows := SortByMean(table, ascending)
	if k > len(rows) {
		k = len(rows)
	}
	return rows[:k]
}
