package complaint

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"meetmydesigners/database/repository"
	complaintRepo "meetmydesigners/database/repository/complaint"
	"meetmydesigners/models"
	"meetmydesigners/services/notification"
	"meetmydesigners/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidComplaint  = errors.New("invalid complaint")
	ErrComplaintNotFound = errors.New("complaint not found")
	ErrInvalidStatus     = errors.New("invalid complaint status")
)

type ComplaintService interface {
	FileComplaint(ctx context.Context, userID string, req models.ComplaintRequest) (*models.CustomerComplaint, error)
	ListComplaints(ctx context.Context, userID string) ([]models.CustomerComplaint, error)
	ListAllComplaints(ctx context.Context, status models.ComplaintStatus) ([]models.CustomerComplaint, error)
	UpdateComplaintStatus(ctx context.Context, id string, status models.ComplaintStatus) (*models.CustomerComplaint, error)
}

type DefaultComplaintService struct {
	Repo     complaintRepo.ComplaintRepository
	Notifier notification.Notifier
	Now      func() time.Time
}

func (s *DefaultComplaintService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func validStatus(status models.ComplaintStatus) bool {
	switch status {
	case models.ComplaintOpen, models.ComplaintInProgress, models.ComplaintResolved:
		return true
	}
	return false
}

func (s *DefaultComplaintService) FileComplaint(ctx context.Context, userID string, req models.ComplaintRequest) (*models.CustomerComplaint, error) {
	subject := strings.TrimSpace(req.Subject)
	description := strings.TrimSpace(req.Description)
	if subject == "" || description == "" {
		return nil, fmt.Errorf("%w: subject and description are required", ErrInvalidComplaint)
	}
	now := s.now()
	c := &models.CustomerComplaint{
		ID:          uuid.New().String(),
		UserID:      userID,
		SessionID:   req.SessionID,
		Subject:     subject,
		Description: description,
		Status:      models.ComplaintOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to file complaint: %w", err)
	}
	utils.GetLogger().Info("complaint: filed", zap.String("complaintID", c.ID), zap.String("userID", userID))
	return c, nil
}

func (s *DefaultComplaintService) ListComplaints(ctx context.Context, userID string) ([]models.CustomerComplaint, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// ListAllComplaints is the admin view; an empty status lists everything.
func (s *DefaultComplaintService) ListAllComplaints(ctx context.Context, status models.ComplaintStatus) ([]models.CustomerComplaint, error) {
	if status != "" && !validStatus(status) {
		return nil, ErrInvalidStatus
	}
	return s.Repo.ListAll(ctx, status)
}

// UpdateComplaintStatus moves a complaint and tells its author.
func (s *DefaultComplaintService) UpdateComplaintStatus(ctx context.Context, id string, status models.ComplaintStatus) (*models.CustomerComplaint, error) {
	if !validStatus(status) {
		return nil, ErrInvalidStatus
	}
	c, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrComplaintNotFound
	}
	if err != nil {
		return nil, err
	}
	if c.Status == status {
		return c, nil
	}
	if err := s.Repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update complaint %s: %w", id, err)
	}
	c.Status = status
	c.UpdatedAt = s.now()

	notification.Send(ctx, s.Notifier, c.UserID, notification.TypeComplaintUpdate,
		"Complaint update",
		fmt.Sprintf("Your complaint %q is now %s.", c.Subject, strings.ReplaceAll(string(status), "_", " ")),
		map[string]string{"complaint_id": c.ID, "status": string(status)})
	return c, nil
}
