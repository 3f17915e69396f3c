package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"meetmydesigners/database/repository"
	"meetmydesigners/models"
	"meetmydesigners/services/realtime"
	"meetmydesigners/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UploadSessionFile stores a file shared by a participant and announces it on
// the session channel.
func (s *DefaultSessionService) UploadSessionFile(ctx context.Context, userID, sessionID, fileName string, r io.Reader) (*models.SessionFile, error) {
	if s.Storage == nil {
		return nil, ErrStorageDisabled
	}
	fileName = filepath.Base(strings.TrimSpace(fileName))
	if fileName == "" || fileName == "." || fileName == "/" {
		return nil, fmt.Errorf("%w: file name is required", ErrInvalidSession)
	}
	sess, err := s.participant(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status == models.SessionExpired {
		return nil, fmt.Errorf("%w: session has expired", ErrInvalidState)
	}

	uploaded, err := s.Storage.Upload(ctx, r, fileName, "sessions/"+sessionID)
	if err != nil {
		return nil, err
	}
	f := &models.SessionFile{
		ID:           uuid.New().String(),
		SessionID:    sessionID,
		UploaderID:   userID,
		FileName:     fileName,
		PublicID:     uploaded.PublicID,
		ResourceType: uploaded.ResourceType,
		URL:          uploaded.URL,
		Size:         uploaded.Bytes,
		CreatedAt:    s.now(),
	}
	if err := s.Files.Create(ctx, f); err != nil {
		if delErr := s.Storage.Delete(ctx, uploaded.PublicID, uploaded.ResourceType); delErr != nil {
			utils.GetLogger().Warn("session: failed to remove orphaned upload",
				zap.String("publicID", uploaded.PublicID), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to save session file: %w", err)
	}

	s.signURL(f)
	realtime.PublishSafe(ctx, s.Publisher, realtime.SessionChannel(sessionID), "file_uploaded", f)
	return f, nil
}

// ListSessionFiles returns the session's files with freshly signed URLs.
func (s *DefaultSessionService) ListSessionFiles(ctx context.Context, userID, sessionID string) ([]models.SessionFile, error) {
	if _, err := s.participant(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	files, err := s.Files.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for i := range files {
		s.signURL(&files[i])
	}
	return files, nil
}

// signURL swaps the stored delivery URL for a signed one. Stored files are
// not publicly deliverable, so on failure the URL is cleared.
func (s *DefaultSessionService) signURL(f *models.SessionFile) {
	if s.Storage == nil {
		f.URL = ""
		return
	}
	url, err := s.Storage.SignedURL(f.ResourceType, f.PublicID)
	if err != nil {
		utils.GetLogger().Warn("session: failed to sign file URL",
			zap.String("publicID", f.PublicID), zap.Error(err))
		f.URL = ""
		return
	}
	f.URL = url
}

// DeleteSessionFile removes a file. Only the uploader may delete it.
func (s *DefaultSessionService) DeleteSessionFile(ctx context.Context, userID, sessionID, fileID string) error {
	if _, err := s.participant(ctx, userID, sessionID); err != nil {
		return err
	}
	f, err := s.Files.GetByID(ctx, fileID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && f.SessionID != sessionID) {
		return ErrFileNotFound
	}
	if err != nil {
		return err
	}
	if f.UploaderID != userID {
		return ErrForbidden
	}

	if s.Storage != nil {
		if err := s.Storage.Delete(ctx, f.PublicID, f.ResourceType); err != nil {
			utils.GetLogger().Warn("session: failed to delete stored file",
				zap.String("publicID", f.PublicID), zap.Error(err))
		}
	}
	if err := s.Files.Delete(ctx, f.ID); err != nil {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	realtime.PublishSafe(ctx, s.Publisher, realtime.SessionChannel(sessionID), "file_deleted",
		map[string]string{"file_id": f.ID, "session_id": sessionID})
	return nil
}
