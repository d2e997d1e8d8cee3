package capacity

import "time"

// Claim is one unit of concurrent capacity held at a facility or extraction
// site by a specific job. A claim is released exactly once, on job completion
// or cancellation; releasing it again is a no-op.
type Claim struct {
	id         string
	hostID     string
	jobID      string
	acquiredAt time.Time
	releasedAt *time.Time
}

// NewClaim creates an active claim
func NewClaim(id, hostID, jobID string, acquiredAt time.Time) *Claim {
	return &Claim{
		id:         id,
		hostID:     hostID,
		jobID:      jobID,
		acquiredAt: acquiredAt,
	}
}

// RestoreClaim rebuilds a claim from persistence, including released state
func RestoreClaim(id, hostID, jobID string, acquiredAt time.Time, releasedAt *time.Time) *Claim {
	return &Claim{
		id:         id,
		hostID:     hostID,
		jobID:      jobID,
		acquiredAt: acquiredAt,
		releasedAt: releasedAt,
	}
}

func (c *Claim) ID() string            { return c.id }
func (c *Claim) HostID() string        { return c.hostID }
func (c *Claim) JobID() string         { return c.jobID }
func (c *Claim) AcquiredAt() time.Time { return c.acquiredAt }
func (c *Claim) ReleasedAt() *time.Time {
	return c.releasedAt
}

// IsActive reports whether the claim still occupies a slot
func (c *Claim) IsActive() bool {
	return c.releasedAt == nil
}
