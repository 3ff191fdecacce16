package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grantbook-dev/grantbook/internal/model"
)

func TestParseEinLookup(t *testing.T) {
	csv := "Charity Name,EIN,Type\nPartners In Health,04-2694280,Public Charity\n,99-9999999,Orphan Row\nNo EIN Charity,,\n"

	entries, err := ParseEinLookup(strings.NewReader(csv))
	require.NoError(t, err)

	// The nameless row is dropped; the EIN-less one kept.
	require.Len(t, entries, 2)
	assert.Equal(t, "Partners In Health", entries[0].Name)
	assert.Equal(t, "04-2694280", entries[0].EIN)
	assert.Equal(t, "Public Charity", entries[0].Type)
	assert.Empty(t, entries[1].EIN)
}

func TestEinIndex_ExactMatch(t *testing.T) {
	idx := NewEinIndex([]model.EinLookupEntry{
		{Name: "Partners In Health", EIN: "04-2694280"},
	})

	entry := idx.Lookup("partners in health")
	require.NotNil(t, entry)
	assert.Equal(t, "04-2694280", entry.EIN)

	// Punctuation differences don't matter.
	entry = idx.Lookup("Partners, In Health!")
	require.NotNil(t, entry)
	assert.Equal(t, "04-2694280", entry.EIN)
}

func TestEinIndex_PrefixMatch(t *testing.T) {
	idx := NewEinIndex([]model.EinLookupEntry{
		{Name: "Partners In Health", EIN: "04-2694280"},
	})

	entry := idx.Lookup("Partners In Health, A Nonprofit Corporation")
	require.NotNil(t, entry)
	assert.Equal(t, "04-2694280", entry.EIN)
}

func TestEinIndex_Miss(t *testing.T) {
	idx := NewEinIndex([]model.EinLookupEntry{
		{Name: "Partners In Health", EIN: "04-2694280"},
	})

	assert.Nil(t, idx.Lookup("Rivertown Mutual Aid Collective"))
	assert.Nil(t, idx.Lookup(""))
}

func TestEinIndex_NilSafe(t *testing.T) {
	var idx *EinIndex
	assert.Nil(t, idx.Lookup("anything"))
}
