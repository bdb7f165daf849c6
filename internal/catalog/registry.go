package catalog

import (
	"sort"
	"time"

	"github.com/mkurbatov/lessonhub-api/internal/models"
)

// Registry resolves lesson types to their descriptors. The scheduling core
// never hardcodes per-type behaviour; it always asks the registry.
type Registry struct {
	byType map[models.LessonType]models.LessonDescriptor
}

// NewRegistry builds a registry from the given descriptors.
func NewRegistry(descriptors ...models.LessonDescriptor) *Registry {
	byType := make(map[models.LessonType]models.LessonDescriptor, len(descriptors))
	for _, d := range descriptors {
		byType[d.Type] = d
	}
	return &Registry{byType: byType}
}

// Default returns the registry seeded with the lesson kinds the school sells.
func Default() *Registry {
	return NewRegistry(
		models.LessonDescriptor{
			Type:          models.LessonTypeOrdinary,
			Name:          "Curated lesson",
			InternalName:  "Ordinary lesson",
			Duration:      30 * time.Minute,
			RequiresEntry: false,
			SortOrder:     intPtr(0),
		},
		models.LessonDescriptor{
			Type:          models.LessonTypePaired,
			Name:          "Paired lesson",
			InternalName:  "Paired lesson",
			Duration:      30 * time.Minute,
			RequiresEntry: true,
			SortOrder:     intPtr(1),
		},
		models.LessonDescriptor{
			Type:          models.LessonTypeHappyHour,
			Name:          "Happy hour",
			InternalName:  "Happy hour",
			Duration:      time.Hour,
			RequiresEntry: true,
			SortOrder:     intPtr(2),
		},
		models.LessonDescriptor{
			Type:          models.LessonTypeMasterClass,
			Name:          "Master class",
			InternalName:  "Master class",
			Duration:      time.Hour,
			RequiresEntry: true,
			// Master classes are announced, not listed for self-service.
			SortOrder: nil,
		},
	)
}

// ByType looks up a descriptor.
func (r *Registry) ByType(t models.LessonType) (models.LessonDescriptor, bool) {
	d, ok := r.byType[t]
	return d, ok
}

// Duration returns the lesson duration for a type, or the fallback when the
// type is unknown.
func (r *Registry) Duration(t models.LessonType, fallback time.Duration) time.Duration {
	if d, ok := r.byType[t]; ok && d.Duration > 0 {
		return d.Duration
	}
	return fallback
}

// Listed returns descriptors that carry a sort order, in listing order.
// Types without one are excluded from customer-facing listings.
func (r *Registry) Listed() []models.LessonDescriptor {
	out := make([]models.LessonDescriptor, 0, len(r.byType))
	for _, d := range r.byType {
		if d.Listed() {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].SortOrder < *out[j].SortOrder })
	return out
}

func intPtr(v int) *int {
	return &v
}
