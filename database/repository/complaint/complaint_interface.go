package complaintRepo

import (
	"context"

	"meetmydesigners/models"
)

// ComplaintRepository persists customer_complaints.
type ComplaintRepository interface {
	Create(ctx context.Context, c *models.CustomerComplaint) error
	GetByID(ctx context.Context, id string) (*models.CustomerComplaint, error)
	ListByUser(ctx context.Context, userID string) ([]models.CustomerComplaint, error)
	ListAll(ctx context.Context, status models.ComplaintStatus) ([]models.CustomerComplaint, error)
	UpdateStatus(ctx context.Context, id string, status models.ComplaintStatus) error
}
