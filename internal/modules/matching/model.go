// README: Candidate technicians derived for a single ranking pass; never persisted.
package matching

import "wireconnect/internal/types"

type Candidate struct {
	TechID         types.ID
	Position       *types.Point
	DistanceMeters float64
}
