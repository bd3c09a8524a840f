package models

// Collection names one synced record set inside the ledger and the
// remote store.
type Collection string

// The synced collections of the budgeting domain. Every ledger and every
// identity-scoped root in the remote store holds exactly this set.
const (
	CollectionStores     Collection = "stores"
	CollectionCategories Collection = "categories"
	CollectionUnits      Collection = "units"
	CollectionItems      Collection = "items"
	CollectionPrices     Collection = "prices"
	CollectionLists      Collection = "lists"
	CollectionListItems  Collection = "listItems"
	CollectionTrips      Collection = "trips"
	CollectionTripItems  Collection = "tripItems"
	CollectionBudgets    Collection = "budgets"
	CollectionTags       Collection = "tags"
)

var collectionOrder = []Collection{
	CollectionStores,
	CollectionCategories,
	CollectionUnits,
	CollectionItems,
	CollectionPrices,
	CollectionLists,
	CollectionListItems,
	CollectionTrips,
	CollectionTripItems,
	CollectionBudgets,
	CollectionTags,
}

// Collections returns every synced collection in its canonical order.
// The returned slice is a copy and safe to modify.
func Collections() []Collection {
	out := make([]Collection, len(collectionOrder))
	copy(out, collectionOrder)
	return out
}

// KnownCollection reports whether name is one of the synced collections.
func KnownCollection(name Collection) bool {
	for _, c := range collectionOrder {
		if c == name {
			return true
		}
	}
	return false
}

// ReferenceAction tells the cascade machinery what to do with a record
// whose foreign-key field points at a deleted record.
type ReferenceAction int

const (
	// RemoveReferencing deletes the referencing record itself.
	RemoveReferencing ReferenceAction = iota + 1

	// ClearReference keeps the referencing record and blanks the
	// foreign-key field instead.
	ClearReference
)

// ReferenceRule describes one foreign-key relationship between
// collections: documents of Collection carry the id of a record in the
// referenced collection under Field.
type ReferenceRule struct {
	Collection Collection
	Field      string
	Action     ReferenceAction
}

// referenceRules maps a referenced collection to the rules triggered by
// deleting one of its records. Referential integrity is enforced here,
// at mutation time, never by the sync engine.
var referenceRules = map[Collection][]ReferenceRule{
	CollectionStores: {
		{Collection: CollectionPrices, Field: "storeId", Action: RemoveReferencing},
		{Collection: CollectionTrips, Field: "storeId", Action: RemoveReferencing},
	},
	CollectionItems: {
		{Collection: CollectionPrices, Field: "itemId", Action: RemoveReferencing},
		{Collection: CollectionListItems, Field: "itemId", Action: RemoveReferencing},
		{Collection: CollectionTripItems, Field: "itemId", Action: RemoveReferencing},
	},
	CollectionCategories: {
		{Collection: CollectionItems, Field: "categoryId", Action: ClearReference},
	},
	CollectionUnits: {
		{Collection: CollectionItems, Field: "unitId", Action: ClearReference},
	},
	CollectionLists: {
		{Collection: CollectionListItems, Field: "listId", Action: RemoveReferencing},
	},
	CollectionTrips: {
		{Collection: CollectionTripItems, Field: "tripId", Action: RemoveReferencing},
	},
}

// ReferenceRulesFor returns the cascade rules triggered by deleting a
// record in target. The returned slice is shared; callers must not
// modify it.
func ReferenceRulesFor(target Collection) []ReferenceRule {
	return referenceRules[target]
}
