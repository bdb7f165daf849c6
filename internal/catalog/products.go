package catalog

import "github.com/mkurbatov/lessonhub-api/internal/models"

// ProductCatalog exposes the bundles the provisioning pipeline can expand.
// The real catalog lives in a separate system; this seam keeps it swappable.
type ProductCatalog interface {
	Product(id string) (models.Product, bool)
}

// StaticProducts is an in-process catalog backed by a fixed product list.
type StaticProducts struct {
	byID map[string]models.Product
}

// NewStaticProducts indexes the given products by id.
func NewStaticProducts(products ...models.Product) *StaticProducts {
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &StaticProducts{byID: byID}
}

// DefaultProducts returns the bundles currently on sale.
func DefaultProducts() *StaticProducts {
	return NewStaticProducts(
		models.Product{
			ID:   "single-lesson",
			Name: "Single lesson",
			Grants: []models.LessonGrant{
				{LessonType: models.LessonTypeOrdinary, Units: 1},
			},
		},
		models.Product{
			ID:   "monthly",
			Name: "Monthly bundle",
			Grants: []models.LessonGrant{
				{LessonType: models.LessonTypeOrdinary, Units: 8},
				{LessonType: models.LessonTypePaired, Units: 2},
			},
		},
		models.Product{
			ID:   "intensive",
			Name: "Intensive bundle",
			Grants: []models.LessonGrant{
				{LessonType: models.LessonTypeOrdinary, Units: 16},
				{LessonType: models.LessonTypePaired, Units: 4},
				{LessonType: models.LessonTypeHappyHour, Units: 2},
			},
		},
	)
}

// Product looks a bundle up by id.
func (c *StaticProducts) Product(id string) (models.Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}
