package complaint

import (
	"context"
	"testing"
	"time"

	"meetmydesigners/database/repository"
	"meetmydesigners/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryComplaints struct{ rows []*models.CustomerComplaint }

func (m *memoryComplaints) Create(ctx context.Context, c *models.CustomerComplaint) error {
	cp := *c
	m.rows = append(m.rows, &cp)
	return nil
}
func (m *memoryComplaints) GetByID(ctx context.Context, id string) (*models.CustomerComplaint, error) {
	for _, c := range m.rows {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}
func (m *memoryComplaints) ListByUser(ctx context.Context, userID string) ([]models.CustomerComplaint, error) {
	var out []models.CustomerComplaint
	for _, c := range m.rows {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}
func (m *memoryComplaints) ListAll(ctx context.Context, status models.ComplaintStatus) ([]models.CustomerComplaint, error) {
	var out []models.CustomerComplaint
	for _, c := range m.rows {
		if status == "" || c.Status == status {
			out = append(out, *c)
		}
	}
	return out, nil
}
func (m *memoryComplaints) UpdateStatus(ctx context.Context, id string, status models.ComplaintStatus) error {
	for _, c := range m.rows {
		if c.ID == id {
			c.Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

type recordingNotifier struct{ sent []string }

func (r *recordingNotifier) Dispatch(ctx context.Context, userID, kind, title, message string, data map[string]string) error {
	r.sent = append(r.sent, userID+":"+message)
	return nil
}

func newService() (*DefaultComplaintService, *recordingNotifier) {
	n := &recordingNotifier{}
	return &DefaultComplaintService{
		Repo:     &memoryComplaints{},
		Notifier: n,
		Now:      func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) },
	}, n
}

func TestFileComplaint(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.FileComplaint(ctx, "u1", models.ComplaintRequest{Subject: "  ", Description: "x"})
	assert.ErrorIs(t, err, ErrInvalidComplaint)

	c, err := svc.FileComplaint(ctx, "u1", models.ComplaintRequest{Subject: "Billing", Description: "Charged twice", SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintOpen, c.Status)
	assert.Equal(t, "s1", c.SessionID)

	mine, err := svc.ListComplaints(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	others, err := svc.ListComplaints(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestUpdateComplaintStatus(t *testing.T) {
	svc, n := newService()
	ctx := context.Background()
	c, err := svc.FileComplaint(ctx, "u1", models.ComplaintRequest{Subject: "Billing", Description: "Charged twice"})
	require.NoError(t, err)

	_, err = svc.UpdateComplaintStatus(ctx, c.ID, "closed")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdateComplaintStatus(ctx, "missing", models.ComplaintResolved)
	assert.ErrorIs(t, err, ErrComplaintNotFound)

	updated, err := svc.UpdateComplaintStatus(ctx, c.ID, models.ComplaintInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintInProgress, updated.Status)
	assert.Equal(t, []string{`u1:Your complaint "Billing" is now in progress.`}, n.sent)

	open, err := svc.ListAllComplaints(ctx, models.ComplaintOpen)
	require.NoError(t, err)
	assert.Empty(t, open)

	all, err := svc.ListAllComplaints(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
