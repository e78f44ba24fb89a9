// Package domain models per-district minimum-temperature zonal statistics
// for Peru and the pure analytics computed over them.
//
// # Data Source
//
// The statistics table is produced upstream by a raster zonal-statistics job:
// a ~1 km minimum-temperature surface is aggregated over the boundaries of
// each of the ~1,870 administrative districts. This service consumes the
// resulting CSV as-is; it never touches raster data.
//
// # Table Conventions
//
// Required columns (upstream naming, kept verbatim on the wire):
//
//	DEPARTAMEN  department (first-level administrative grouping)
//	PROVINCIA   province
//	DISTRITO    district (one row per district)
//	mean        mean minimum temperature over the district, °C
//	min, max    extreme pixel values inside the district, °C
//	std         pixel standard deviation, °C
//
// Optional columns: count (valid raster pixels inside the boundary),
// percentile_10, percentile_90, and range (max − min, recomputed when the
// column is absent).
//
// Malformed numeric cells parse to NaN and the row is kept for display and
// row counting but excluded from every quantile, aggregate, and ranking.
// Aggregate counts report only districts that actually contributed a value.
//
// # Risk Classification
//
// The risk threshold is the 10th percentile of district mean temperature,
// computed by linear interpolation between closest ranks over the full,
// unfiltered table. A district is high-risk when mean ≤ threshold. Callers
// that want a threshold over a subset must pass that subset explicitly;
// nothing here recomputes thresholds from filtered views implicitly.
//
// # National Summary Document
//
// The companion JSON document carries precomputed national metrics under
// Spanish keys (total_distritos, distritos_alto_riesgo, temp_media_nacional,
// temp_minima_extrema, temp_maxima_extrema, distrito_mas_frio,
// distrito_mas_calido, umbral_alto_riesgo). It is an input, not a source of
// truth: Reconcile recomputes every metric from the table and reports each
// disagreement beyond tolerance instead of trusting the document.
package domain
