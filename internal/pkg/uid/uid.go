// Package uid provides ID generation behind small interfaces.
//
// NumberID yields sortable numeric identifiers for database records.
// StringID yields opaque string identifiers (correlation IDs, token IDs).
package uid

// NumberID generates int64 identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}
