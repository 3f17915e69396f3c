package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"meetmydesigners/database/repository"
	"meetmydesigners/models"
	"meetmydesigners/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SubmitReview records the client's rating of an ended session and refreshes
// the designer's average.
func (s *DefaultSessionService) SubmitReview(ctx context.Context, clientID, sessionID string, req models.ReviewRequest) (*models.SessionReview, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidSession)
	}
	sess, err := s.Sessions.GetByID(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if sess.ClientID != clientID {
		return nil, ErrForbidden
	}
	if sess.Status != models.SessionEnded {
		return nil, fmt.Errorf("%w: only ended sessions can be reviewed", ErrInvalidState)
	}

	_, err = s.Reviews.GetBySession(ctx, sessionID)
	switch {
	case err == nil:
		return nil, ErrAlreadyReviewed
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	review := &models.SessionReview{
		ID:         uuid.New().String(),
		SessionID:  sessionID,
		ClientID:   clientID,
		DesignerID: sess.DesignerID,
		Rating:     req.Rating,
		Comment:    strings.TrimSpace(req.Comment),
		CreatedAt:  s.now(),
	}
	if err := s.Reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to save review: %w", err)
	}

	if err := s.refreshRating(ctx, sess.DesignerID); err != nil {
		utils.GetLogger().Error("session: failed to refresh designer rating",
			zap.String("designerID", sess.DesignerID), zap.Error(err))
	}
	return review, nil
}

func (s *DefaultSessionService) refreshRating(ctx context.Context, designerID string) error {
	reviews, err := s.Reviews.ListByDesigner(ctx, designerID)
	if err != nil {
		return err
	}
	if len(reviews) == 0 {
		return nil
	}
	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	avg := utils.RoundMoney(float64(total) / float64(len(reviews)))
	return s.Designers.UpdateRating(ctx, designerID, avg, len(reviews))
}
