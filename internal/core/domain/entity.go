package domain

// EntityType classifies an extracted entity
type EntityType string

const (
	EntityTypeTicker  EntityType = "ticker"
	EntityTypePerson  EntityType = "person"
	EntityTypeOrg     EntityType = "org"
	EntityTypeKeyword EntityType = "keyword"
)

// SignificantEntityTypes are the entity types used for narrative clustering.
// Keywords are excluded: they group too loosely to anchor a narrative.
var SignificantEntityTypes = []EntityType{
	EntityTypeTicker,
	EntityTypePerson,
	EntityTypeOrg,
}

// Entity is a normalized token extracted from a document.
// Entities are created once at extraction time and never mutated.
type Entity struct {
	DocumentID string     `json:"document_id"`
	Type       EntityType `json:"type"`
	Value      string     `json:"value"` // Normalized literal, e.g. "$NVDA", "Elon Musk"
}

// Key returns the clustering key for this entity, namespaced by type so
// a ticker "$F" and a keyword "$F" never collide.
func (e Entity) Key() string {
	return string(e.Type) + ":" + e.Value
}
