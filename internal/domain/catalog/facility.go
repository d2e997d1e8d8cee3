package catalog

// Facility is an immutable production facility definition: which recipe
// capability tags it supports, how many jobs it can run concurrently, and the
// highest quality tier it can produce.
type Facility struct {
	id                string
	name              string
	tags              []string
	maxSlots          int
	efficiency        float64
	maxQuality        QualityTier
	specialization    string
	accessRequirement string
	ownerID           int // 0 means third-party operated
}

// NewFacility creates a facility definition
func NewFacility(
	id string,
	name string,
	tags []string,
	maxSlots int,
	efficiency float64,
	maxQuality QualityTier,
	specialization string,
	accessRequirement string,
	ownerID int,
) *Facility {
	t := make([]string, len(tags))
	copy(t, tags)

	if efficiency <= 0 {
		efficiency = 1.0
	}

	return &Facility{
		id:                id,
		name:              name,
		tags:              t,
		maxSlots:          maxSlots,
		efficiency:        efficiency,
		maxQuality:        maxQuality,
		specialization:    specialization,
		accessRequirement: accessRequirement,
		ownerID:           ownerID,
	}
}

func (f *Facility) ID() string                { return f.id }
func (f *Facility) Name() string              { return f.name }
func (f *Facility) MaxSlots() int             { return f.maxSlots }
func (f *Facility) Efficiency() float64       { return f.efficiency }
func (f *Facility) MaxQuality() QualityTier   { return f.maxQuality }
func (f *Facility) Specialization() string    { return f.specialization }
func (f *Facility) AccessRequirement() string { return f.accessRequirement }
func (f *Facility) OwnerID() int              { return f.ownerID }

// Tags returns a copy of the facility's capability tags
func (f *Facility) Tags() []string {
	tags := make([]string, len(f.tags))
	copy(tags, f.tags)
	return tags
}

// SupportsTag checks capability-tag membership
func (f *Facility) SupportsTag(tag string) bool {
	if tag == "" {
		return true
	}
	for _, t := range f.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SpecializationMatches reports whether the facility specializes in the given
// recipe category
func (f *Facility) SpecializationMatches(category string) bool {
	return f.specialization != "" && f.specialization == category
}

// IsOwnedBy reports whether the facility is controlled by the given owner
func (f *Facility) IsOwnedBy(ownerID int) bool {
	return f.ownerID != 0 && f.ownerID == ownerID
}
