package catalog

import "fmt"

// NotFoundError reports a lookup for an unknown catalog entity
type NotFoundError struct {
	EntityKind string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.EntityKind, e.ID)
}

func NewNotFoundError(entityKind, id string) *NotFoundError {
	return &NotFoundError{EntityKind: entityKind, ID: id}
}

// InvalidQualityTierError reports a production request above the facility's
// maximum producible tier
type InvalidQualityTierError struct {
	Requested QualityTier
	Maximum   QualityTier
}

func (e *InvalidQualityTierError) Error() string {
	return fmt.Sprintf("quality tier %s exceeds facility maximum %s", e.Requested, e.Maximum)
}

// CapabilityError reports a facility that does not support a recipe's
// required capability tag
type CapabilityError struct {
	FacilityID string
	Tag        string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("facility %s does not support capability %s", e.FacilityID, e.Tag)
}

// ResourceError reports a resource kind not extractable at a site
type ResourceError struct {
	SiteID string
	Kind   string
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource %s is not present at site %s", e.Kind, e.SiteID)
}
