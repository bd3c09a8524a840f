package utils

import "github.com/google/uuid"

// RecordIDGenerator produces collision-free string ids for new records.
// Ids are UUIDv7 so records created on one device sort roughly by
// creation time; when v7 generation fails it falls back to a random v4.
type RecordIDGenerator struct {
}

// NewRecordIDGenerator constructs a RecordIDGenerator.
func NewRecordIDGenerator() *RecordIDGenerator {
	return &RecordIDGenerator{}
}

// Generate returns a new record id.
func (g *RecordIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
