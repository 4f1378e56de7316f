package domain

import "strconv"

// DistinctNames returns the distinct scientific names across occurrence rows
// in first-seen order, so resolver requests stay deterministic.
func DistinctNames(occs []OccurrenceRecord) []string {
	seen := make(map[string]struct{}, len(occs))
	names := make([]string, 0, len(occs))
	for _, o := range occs {
		if _, ok := seen[o.ScientificName]; ok {
			continue
		}
		seen[o.ScientificName] = struct{}{}
		names = append(names, o.ScientificName)
	}
	return names
}

// ApplyTaxonomy left-joins resolved taxonomy onto occurrence rows by
// scientific name. Unmatched names keep blank taxonomy fields and are
// returned so the caller can log them.
func ApplyTaxonomy(occs []OccurrenceRecord, matches map[string]TaxonMatch) (unmatched []string) {
	missing := make(map[string]struct{})

	for i := range occs {
		m, ok := matches[occs[i].ScientificName]
		if !ok {
			if _, dup := missing[occs[i].ScientificName]; !dup {
				missing[occs[i].ScientificName] = struct{}{}
				unmatched = append(unmatched, occs[i].ScientificName)
			}
			continue
		}
		occs[i].AcceptedName = m.AcceptedName
		occs[i].AcceptedID = strconv.Itoa(m.AphiaID)
		occs[i].ScientificNameID = m.ScientificNameID()
		occs[i].Kingdom = m.Kingdom
		occs[i].Phylum = m.Phylum
		occs[i].Class = m.Class
		occs[i].Order = m.Order
		occs[i].Family = m.Family
		occs[i].Genus = m.Genus
		occs[i].ScientificNameAuthorship = m.Authorship
		occs[i].TaxonRank = m.Rank
	}

	return unmatched
}
