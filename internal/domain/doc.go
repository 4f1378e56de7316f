// Package domain models benthic reef survey observations and their Darwin
// Core alignment.
//
// # Data Source
//
// Survey rows come from long-term coral reef monitoring CSVs (one row per
// taxon per transect visit). Each row carries the sampling date, position,
// site descriptors (region, station, transect), the observed scientific
// name, the percent cover recorded for it, and ancillary transect-level
// measurements (depth, water temperature, substrate rugosity).
//
// # Alignment Conventions
//
// Event identity:
//
//	eventID = "<region>_<station>_<transect>"
//	All rows sharing a region/station/transect triple describe the same
//	sampling event; the event table keeps the first row per eventID.
//
// Occurrence identity:
//
//	Each row receives an opaque UUID occurrenceID. The legacy notebooks this
//	pipeline replaces generated a single identifier and broadcast it to every
//	row; that behavior is preserved behind OccurrenceIDShared for datasets
//	that must stay byte-comparable with historical exports.
//
// Occurrence status:
//
//	percent cover == 0  → "absent"
//	percent cover != 0  → "present"
//
// Dates:
//
//	Input uses US notation with or without zero padding ("7/16/2004",
//	"07/16/2004"). Every output table writes ISO calendar dates
//	("2004-07-16"), no time of day.
//
// Measurements:
//
//	Three quantities feed the extended measurement-or-fact table: water
//	temperature and rugosity attach to the event (blank occurrenceID),
//	percent cover attaches to the occurrence. Type and unit URIs come from
//	the NERC vocabulary server and can be overridden per deployment; see
//	DefaultMeasurementSpecs.
//
// # Taxonomic Enrichment
//
// Scientific names are matched against a WoRMS-style REST authority. The
// pipeline consumes only the contract "name → taxon record, or no match"
// (NameResolver); a name without a match keeps blank taxonomy fields in the
// occurrence table rather than failing the run.
package domain
