package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLedger_AllCollectionsPresent(t *testing.T) {
	l := NewLedger()

	require.Len(t, l, len(Collections()))
	for _, c := range Collections() {
		docs, ok := l[c]
		assert.True(t, ok, "collection %q missing", c)
		assert.Empty(t, docs)
	}
}

func TestParseLedger_Success(t *testing.T) {
	blob := []byte(`{
		"stores": [{"id": "s-1", "name": "Corner Shop"}],
		"items":  [{"id": "i-1", "name": "Milk"}, {"id": "i-2", "name": "Bread"}]
	}`)

	l, err := ParseLedger(blob)

	require.NoError(t, err)
	assert.Len(t, l[CollectionStores], 1)
	assert.Len(t, l[CollectionItems], 2)
	assert.Equal(t, "Corner Shop", l[CollectionStores][0]["name"])

	// Collections absent from the blob come back empty, not missing.
	docs, ok := l[CollectionBudgets]
	assert.True(t, ok)
	assert.Empty(t, docs)
}

func TestParseLedger_NotAnObject(t *testing.T) {
	for _, blob := range []string{`[]`, `"text"`, `42`, `not json at all`} {
		_, err := ParseLedger([]byte(blob))
		assert.Error(t, err, "blob %q should not parse", blob)
	}
}

func TestParseLedger_UnknownCollection(t *testing.T) {
	blob := []byte(`{"wishlists": [{"id": "w-1"}]}`)

	_, err := ParseLedger(blob)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown collection")
	assert.Contains(t, err.Error(), "wishlists")
}

func TestParseLedger_RecordWithoutID(t *testing.T) {
	blob := []byte(`{"items": [{"name": "Milk"}]}`)

	_, err := ParseLedger(blob)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no id")
}

func TestParseLedger_DuplicateID(t *testing.T) {
	blob := []byte(`{"items": [{"id": "i-1"}, {"id": "i-1"}]}`)

	_, err := ParseLedger(blob)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")
}

func TestParseLedger_NullCollection(t *testing.T) {
	blob := []byte(`{"items": null}`)

	l, err := ParseLedger(blob)

	require.NoError(t, err)
	docs, ok := l[CollectionItems]
	assert.True(t, ok)
	assert.Empty(t, docs)
}

func TestLedger_SerializeRoundTrip(t *testing.T) {
	l := NewLedger()
	l[CollectionItems] = []Document{
		{"id": "i-1", "name": "Milk"},
		{"id": "i-2", "name": "Bread"},
	}
	l[CollectionTags] = []Document{{"id": "t-1", "label": "weekly"}}

	blob, err := l.Serialize()
	require.NoError(t, err)

	parsed, err := ParseLedger(blob)
	require.NoError(t, err)
	assert.Equal(t, l, parsed)
}

func TestLedger_Serialize_FillsMissingCollections(t *testing.T) {
	// A sparse ledger still serializes every known collection.
	l := Ledger{CollectionItems: []Document{{"id": "i-1"}}}

	blob, err := l.Serialize()
	require.NoError(t, err)

	parsed, err := ParseLedger(blob)
	require.NoError(t, err)
	require.Len(t, parsed, len(Collections()))
	assert.Empty(t, parsed[CollectionTrips])
}

func TestLedger_Counts(t *testing.T) {
	l := NewLedger()
	l[CollectionItems] = []Document{{"id": "i-1"}, {"id": "i-2"}}
	l[CollectionStores] = []Document{{"id": "s-1"}}

	counts := l.Counts()

	assert.Equal(t, 2, counts[CollectionItems])
	assert.Equal(t, 1, counts[CollectionStores])
	assert.Equal(t, 0, counts[CollectionBudgets])
	assert.Len(t, counts, len(Collections()))
}

func TestLedger_TotalRecords(t *testing.T) {
	l := NewLedger()
	assert.Zero(t, l.TotalRecords())

	l[CollectionItems] = []Document{{"id": "i-1"}, {"id": "i-2"}}
	l[CollectionLists] = []Document{{"id": "l-1"}}
	assert.Equal(t, 3, l.TotalRecords())
}

func TestLedger_Clone(t *testing.T) {
	l := NewLedger()
	l[CollectionItems] = []Document{{"id": "i-1", "name": "Milk"}}

	clone := l.Clone()
	require.Equal(t, l, clone)

	clone[CollectionItems][0]["name"] = "Changed"
	assert.Equal(t, "Milk", l[CollectionItems][0]["name"])
}

func TestLedger_FindByID(t *testing.T) {
	l := NewLedger()
	l[CollectionItems] = []Document{
		{"id": "i-1", "name": "Milk"},
		{"id": "i-2", "name": "Bread"},
	}

	found := l.FindByID(CollectionItems, "i-2")
	require.NotNil(t, found)
	assert.Equal(t, "Bread", found["name"])

	assert.Nil(t, l.FindByID(CollectionItems, "i-404"))
	assert.Nil(t, l.FindByID(CollectionStores, "i-1"))
}

func TestUnionByID_RemoteWinsOnCollision(t *testing.T) {
	local := NewLedger()
	local[CollectionItems] = []Document{
		{"id": "i-1", "name": "Milk", "qty": 1},
		{"id": "i-2", "name": "Bread"},
	}

	remote := NewLedger()
	remote[CollectionItems] = []Document{
		{"id": "i-1", "name": "Whole Milk", "qty": 2},
	}

	merged := UnionByID(local, remote)

	require.Len(t, merged[CollectionItems], 2)
	assert.Equal(t, "Whole Milk", merged[CollectionItems][0]["name"])
	assert.Equal(t, 2, merged[CollectionItems][0]["qty"])
	assert.Equal(t, "Bread", merged[CollectionItems][1]["name"])
}

func TestUnionByID_RemoteOnlyRecordsAppended(t *testing.T) {
	local := NewLedger()
	local[CollectionItems] = []Document{{"id": "i-1", "name": "Milk"}}

	remote := NewLedger()
	remote[CollectionItems] = []Document{
		{"id": "i-1", "name": "Milk"},
		{"id": "i-9", "name": "Eggs"},
	}

	merged := UnionByID(local, remote)

	require.Len(t, merged[CollectionItems], 2)
	assert.Equal(t, "i-1", merged[CollectionItems][0].ID())
	assert.Equal(t, "i-9", merged[CollectionItems][1].ID())
}

func TestUnionByID_InputsNotMutated(t *testing.T) {
	local := NewLedger()
	local[CollectionItems] = []Document{{"id": "i-1", "name": "Milk"}}

	remote := NewLedger()
	remote[CollectionItems] = []Document{{"id": "i-1", "name": "Whole Milk"}}

	merged := UnionByID(local, remote)
	merged[CollectionItems][0]["name"] = "Mutated"

	assert.Equal(t, "Milk", local[CollectionItems][0]["name"])
	assert.Equal(t, "Whole Milk", remote[CollectionItems][0]["name"])
}

func TestUnionByID_DisjointCollections(t *testing.T) {
	local := NewLedger()
	local[CollectionStores] = []Document{{"id": "s-1"}}

	remote := NewLedger()
	remote[CollectionTags] = []Document{{"id": "t-1"}}

	merged := UnionByID(local, remote)

	assert.Len(t, merged[CollectionStores], 1)
	assert.Len(t, merged[CollectionTags], 1)
	assert.Empty(t, merged[CollectionItems])
}
