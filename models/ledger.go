package models

import (
	"encoding/json"
	"fmt"
)

// Ledger is the full application state: every synced collection mapped
// to its ordered list of records. It is the unit of local persistence
// (serialized as one JSON blob), of export/import, and of the merge
// path's union.
type Ledger map[Collection][]Document

// NewLedger returns an empty ledger with every known collection present.
func NewLedger() Ledger {
	l := make(Ledger, len(collectionOrder))
	for _, c := range collectionOrder {
		l[c] = []Document{}
	}
	return l
}

// ParseLedger decodes and validates a serialized ledger blob.
//
// The blob must be a JSON object whose members are known collection
// names, each holding an array of objects carrying a non-empty string
// id unique within its collection. Collections missing from the blob
// come back empty; unknown members are rejected. Nothing is mutated on
// failure.
func ParseLedger(data []byte) (Ledger, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("ledger blob is not a JSON object: %w", err)
	}

	ledger := NewLedger()
	for name, rawDocs := range raw {
		collection := Collection(name)
		if !KnownCollection(collection) {
			return nil, fmt.Errorf("ledger blob contains unknown collection %q", name)
		}

		var docs []Document
		if err := json.Unmarshal(rawDocs, &docs); err != nil {
			return nil, fmt.Errorf("collection %q is not an array of records: %w", name, err)
		}
		if docs == nil {
			docs = []Document{}
		}

		seen := make(map[string]struct{}, len(docs))
		for i, doc := range docs {
			id := doc.ID()
			if id == "" {
				return nil, fmt.Errorf("collection %q record %d has no id", name, i)
			}
			if _, dup := seen[id]; dup {
				return nil, fmt.Errorf("collection %q contains duplicate id %q", name, id)
			}
			seen[id] = struct{}{}
		}

		ledger[collection] = docs
	}

	return ledger, nil
}

// Serialize encodes the ledger as the canonical JSON blob. Every known
// collection is present even when empty, so blobs from different
// sessions stay structurally comparable.
func (l Ledger) Serialize() ([]byte, error) {
	full := make(map[Collection][]Document, len(collectionOrder))
	for _, c := range collectionOrder {
		docs := l[c]
		if docs == nil {
			docs = []Document{}
		}
		full[c] = docs
	}

	data, err := json.Marshal(full)
	if err != nil {
		return nil, fmt.Errorf("serialize ledger: %w", err)
	}
	return data, nil
}

// Counts returns the number of records per collection, with every known
// collection present.
func (l Ledger) Counts() map[Collection]int {
	counts := make(map[Collection]int, len(collectionOrder))
	for _, c := range collectionOrder {
		counts[c] = len(l[c])
	}
	return counts
}

// TotalRecords returns the number of records across all collections.
func (l Ledger) TotalRecords() int {
	total := 0
	for _, docs := range l {
		total += len(docs)
	}
	return total
}

// Clone returns a deep copy of the ledger.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for c, docs := range l {
		cloned := make([]Document, len(docs))
		for i, doc := range docs {
			cloned[i] = doc.Clone()
		}
		out[c] = cloned
	}
	return out
}

// FindByID returns the record with the given id in collection c, or nil.
func (l Ledger) FindByID(c Collection, id string) Document {
	for _, doc := range l[c] {
		if doc.ID() == id {
			return doc
		}
	}
	return nil
}

// UnionByID merges remote records into local, collection by collection.
// On id collision the remote record wins (a remote copy ahead of local
// means another session wrote it); records only present remotely are
// appended after the local ones in remote order. Neither input is
// mutated.
func UnionByID(local, remote Ledger) Ledger {
	merged := NewLedger()
	for _, c := range collectionOrder {
		remoteByID := make(map[string]Document, len(remote[c]))
		for _, doc := range remote[c] {
			remoteByID[doc.ID()] = doc
		}

		docs := make([]Document, 0, len(local[c])+len(remote[c]))
		localIDs := make(map[string]struct{}, len(local[c]))
		for _, doc := range local[c] {
			id := doc.ID()
			localIDs[id] = struct{}{}
			if winner, ok := remoteByID[id]; ok {
				docs = append(docs, winner.Clone())
				continue
			}
			docs = append(docs, doc.Clone())
		}
		for _, doc := range remote[c] {
			if _, ok := localIDs[doc.ID()]; ok {
				continue
			}
			docs = append(docs, doc.Clone())
		}

		merged[c] = docs
	}
	return merged
}
