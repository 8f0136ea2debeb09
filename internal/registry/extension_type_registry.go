package registry

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"geo_tracker/internal/models"
)

// DefaultExtensionDescription is the placeholder set on lazily created
// extension types.
const DefaultExtensionDescription = "Auto-created extension type"

// ExtensionTypeRegistry resolves and creates named extension types.
type ExtensionTypeRegistry struct {
	db *gorm.DB
}

func NewExtensionTypeRegistry(db *gorm.DB) *ExtensionTypeRegistry {
	return &ExtensionTypeRegistry{db: db}
}

// ResolveByName looks an extension type up by name. A miss returns (nil, nil).
func (r *ExtensionTypeRegistry) ResolveByName(ctx context.Context, name string) (*models.EventExtensionType, error) {
	var extType models.EventExtensionType
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&extType).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &extType, nil
}

// ResolveOrCreate returns the extension type for name, creating it with the
// placeholder description on first sighting.
func (r *ExtensionTypeRegistry) ResolveOrCreate(ctx context.Context, name string) (*models.EventExtensionType, error) {
	for attempt := 0; attempt < resolveAttempts; attempt++ {
		existing, err := r.ResolveByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}

		extType := models.EventExtensionType{
			Name:        name,
			Description: DefaultExtensionDescription,
		}
		// Savepoint keeps the surrounding transaction usable when the
		// insert loses the race.
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Create(&extType).Error
		})
		if err == nil {
			return &extType, nil
		}
		if !isDuplicateKey(err) {
			return nil, err
		}
	}
	return nil, ErrConflictRetry
}
