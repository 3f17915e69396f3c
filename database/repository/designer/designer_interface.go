package designerRepo

import (
	"context"

	"meetmydesigners/models"
)

// DesignerRepository persists the bookable designer records.
type DesignerRepository interface {
	Create(ctx context.Context, d *models.Designer) error
	GetByID(ctx context.Context, id string) (*models.Designer, error)
	GetByUserID(ctx context.Context, userID string) (*models.Designer, error)
	List(ctx context.Context, onlineOnly bool) ([]models.Designer, error)
	Update(ctx context.Context, d *models.Designer) error
	SetOnline(ctx context.Context, id string, online bool) error
	UpdateRating(ctx context.Context, id string, rating float64, count int) error
}
