// README: Common value types shared across modules.
package types

// ID is an opaque identifier for jobs, clients, and technicians.
type ID string

// Point is a WGS84 coordinate pair. A nil *Point means the location is unknown.
type Point struct {
	Lat float64
	Lng float64
}

// Money is an integer amount in the smallest currency unit.
type Money struct {
	Amount   int64
	Currency string
}
