package postgres

import (
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator issues ULIDs for properties, investments, wallet rows
// and audit entries. ULIDs sort by creation time, which keeps ledger
// listings in insertion order without a separate sequence.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate returns a new ULID string.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}
