package domain

import (
	"context"
	"fmt"
)

// TaxonMatch is the authority's record for one scientific name.
type TaxonMatch struct {
	ScientificName string // name as matched by the authority
	AcceptedName   string
	AphiaID        int // accepted authority identifier
	Kingdom        string
	Phylum         string
	Class          string
	Order          string
	Family         string
	Genus          string
	Authorship     string
	Rank           string
}

// ScientificNameID builds the LSID URN for the accepted authority identifier.
func (m TaxonMatch) ScientificNameID() string {
	if m.AphiaID == 0 {
		return ""
	}
	return fmt.Sprintf("urn:lsid:marinespecies.org:taxname:%d", m.AphiaID)
}

// NameResolver matches a set of scientific names against a taxonomic
// authority. Names absent from the returned map are unresolved; only
// transport-level failures return an error. Batching, caching, and retry
// policy live behind this interface.
type NameResolver interface {
	Resolve(ctx context.Context, names []string) (map[string]TaxonMatch, error)
}
