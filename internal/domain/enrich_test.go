package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coralMatch() TaxonMatch {
	return TaxonMatch{
		ScientificName: "Acropora cervicornis",
		AcceptedName:   "Acropora cervicornis",
		AphiaID:        206989,
		Kingdom:        "Animalia",
		Phylum:         "Cnidaria",
		Class:          "Hexacorallia",
		Order:          "Scleractinia",
		Family:         "Acroporidae",
		Genus:          "Acropora",
		Authorship:     "(Lamarck, 1816)",
		Rank:           "Species",
	}
}

func TestScientificNameID(t *testing.T) {
	t.Run("builds LSID URN", func(t *testing.T) {
		assert.Equal(t, "urn:lsid:marinespecies.org:taxname:206989", coralMatch().ScientificNameID())
	})

	t.Run("blank without an ID", func(t *testing.T) {
		assert.Empty(t, TaxonMatch{}.ScientificNameID())
	})
}

func TestDistinctNames(t *testing.T) {
	occs := []OccurrenceRecord{
		{ScientificName: "Acropora cervicornis"},
		{ScientificName: "Madracis auretenra"},
		{ScientificName: "Acropora cervicornis"},
	}

	names := DistinctNames(occs)

	assert.Equal(t, []string{"Acropora cervicornis", "Madracis auretenra"}, names)
}

func TestApplyTaxonomy(t *testing.T) {
	t.Run("matched rows get full hierarchy", func(t *testing.T) {
		occs := []OccurrenceRecord{
			{ScientificName: "Acropora cervicornis", EventID: "e1", OccurrenceID: "o1", OccurrenceStatus: "absent"},
		}

		unmatched := ApplyTaxonomy(occs, map[string]TaxonMatch{
			"Acropora cervicornis": coralMatch(),
		})

		require.Empty(t, unmatched)
		o := occs[0]
		assert.Equal(t, "Acropora cervicornis", o.AcceptedName)
		assert.Equal(t, "206989", o.AcceptedID)
		assert.Equal(t, "urn:lsid:marinespecies.org:taxname:206989", o.ScientificNameID)
		assert.Equal(t, "Animalia", o.Kingdom)
		assert.Equal(t, "Cnidaria", o.Phylum)
		assert.Equal(t, "Scleractinia", o.Order)
		assert.Equal(t, "Acroporidae", o.Family)
		assert.Equal(t, "Acropora", o.Genus)
		assert.Equal(t, "(Lamarck, 1816)", o.ScientificNameAuthorship)
		assert.Equal(t, "Species", o.TaxonRank)
		// Core fields untouched by the join.
		assert.Equal(t, "e1", o.EventID)
		assert.Equal(t, "absent", o.OccurrenceStatus)
	})

	t.Run("unmatched rows stay blank", func(t *testing.T) {
		occs := []OccurrenceRecord{
			{ScientificName: "Acropora cervicornis"},
			{ScientificName: "Unknown sponge"},
			{ScientificName: "Unknown sponge"},
		}

		unmatched := ApplyTaxonomy(occs, map[string]TaxonMatch{
			"Acropora cervicornis": coralMatch(),
		})

		assert.Equal(t, []string{"Unknown sponge"}, unmatched)
		assert.Empty(t, occs[1].AcceptedName)
		assert.Empty(t, occs[1].Kingdom)
		assert.Empty(t, occs[2].ScientificNameID)
	})

	t.Run("empty match map leaves everything blank", func(t *testing.T) {
		occs := []OccurrenceRecord{{ScientificName: "Acropora cervicornis"}}

		unmatched := ApplyTaxonomy(occs, map[string]TaxonMatch{})

		assert.Equal(t, []string{"Acropora cervicornis"}, unmatched)
		assert.Empty(t, occs[0].AcceptedID)
	})
}
