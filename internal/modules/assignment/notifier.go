// README: Notification hooks fired by the assignment engine.
package assignment

import (
	"context"

	"wireconnect/internal/modules/job"
	"wireconnect/internal/types"
)

// Notifier receives assignment lifecycle hooks. Implementations must not
// block the engine; delivery failures are theirs to log.
type Notifier interface {
	// Assigned fires when an offer is made to a technician.
	Assigned(ctx context.Context, j *job.Job, techID types.ID)
	// Exhausted fires when no eligible candidates remain for a job.
	Exhausted(ctx context.Context, j *job.Job)
}

// NopNotifier drops all hooks; used when no broker is configured.
type NopNotifier struct{}

func (NopNotifier) Assigned(context.Context, *job.Job, types.ID) {}
func (NopNotifier) Exhausted(context.Context, *job.Job)          {}
