// package models defines the data model for the afterthoughts journaling client
package models

import (
	"time"
)

// Model defines the base interface for all locally persisted models.
// Implementations include Diary and Entry.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle local cache interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the cache
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the cache
	Delete(id string) error                    // Delete removes a model from the cache by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}
