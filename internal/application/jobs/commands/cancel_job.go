package commands

import (
	"context"
	"fmt"

	"github.com/dmarrick/novaforge/internal/application/common"
	"github.com/dmarrick/novaforge/internal/application/scheduler"
)

// CancelJobCommand requests cancellation of a pending or active job
type CancelJobCommand struct {
	JobID string
}

// CancelJobResponse confirms the cancellation
type CancelJobResponse struct {
	JobID string
}

// CancelJobHandler undoes a job's reservation and slot claim atomically.
// Completion wins any race with cancellation.
type CancelJobHandler struct {
	completer *scheduler.Completer
	scheduler *scheduler.Scheduler
}

// NewCancelJobHandler creates a cancel job handler
func NewCancelJobHandler(completer *scheduler.Completer, sched *scheduler.Scheduler) *CancelJobHandler {
	return &CancelJobHandler{completer: completer, scheduler: sched}
}

// Handle executes the cancel job command
func (h *CancelJobHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CancelJobCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	if err := h.completer.Cancel(ctx, cmd.JobID); err != nil {
		return nil, err
	}
	h.scheduler.Unschedule(cmd.JobID)

	common.LoggerFromContext(ctx).Log("INFO", "job cancelled",
		map[string]interface{}{"job_id": cmd.JobID})

	return &CancelJobResponse{JobID: cmd.JobID}, nil
}
