package availabilityRepo

import (
	"context"

	"meetmydesigners/models"
)

// AvailabilityRepository persists designer_slots and designer_special_days.
type AvailabilityRepository interface {
	ListSlots(ctx context.Context, designerID string) ([]models.DesignerSlot, error)
	ListActiveSlotsForDay(ctx context.Context, designerID string, dayOfWeek int) ([]models.DesignerSlot, error)
	ReplaceSlots(ctx context.Context, designerID string, slots []models.DesignerSlot) error

	// GetSpecialDay returns nil, nil when no override exists for the date.
	GetSpecialDay(ctx context.Context, designerID, date string) (*models.DesignerSpecialDay, error)
	ListSpecialDays(ctx context.Context, designerID, fromDate string) ([]models.DesignerSpecialDay, error)
	UpsertSpecialDay(ctx context.Context, day *models.DesignerSpecialDay) error
	DeleteSpecialDay(ctx context.Context, designerID, id string) error
}
