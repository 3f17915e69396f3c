package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"meetmydesigners/utils"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/asset"
	"go.uber.org/zap"
)

// Session files are not publicly deliverable; every URL must be signed.
const deliveryType = api.DeliveryType(api.Authenticated)

// DefaultURLTTL bounds token-authenticated URLs.
const DefaultURLTTL = 30 * time.Minute

// UploadedFile describes a stored asset.
type UploadedFile struct {
	PublicID     string
	URL          string
	ResourceType string
	Bytes        int64
}

// StorageService stores files shared during sessions.
type StorageService interface {
	Upload(ctx context.Context, r io.Reader, fileName, folder string) (*UploadedFile, error)
	Delete(ctx context.Context, publicID, resourceType string) error
	// SignedURL returns a delivery URL for a stored file.
	SignedURL(resourceType, publicID string) (string, error)
}

// CloudinaryStorage implements StorageService on Cloudinary. With a token key
// the signed URLs also expire after urlTTL.
type CloudinaryStorage struct {
	cld      *cloudinary.Cloudinary
	tokenKey string
	urlTTL   time.Duration
}

func NewCloudinaryStorage(cld *cloudinary.Cloudinary, tokenKey string, urlTTL time.Duration) *CloudinaryStorage {
	if urlTTL <= 0 {
		urlTTL = DefaultURLTTL
	}
	return &CloudinaryStorage{cld: cld, tokenKey: tokenKey, urlTTL: urlTTL}
}

// Upload stores r under folder. Cloudinary picks the resource type.
func (s *CloudinaryStorage) Upload(ctx context.Context, r io.Reader, fileName, folder string) (*UploadedFile, error) {
	result, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:       folder,
		ResourceType: "auto",
		Type:         deliveryType,
		Tags:         []string{"session_file"},
		Context:      map[string]string{"file_name": fileName},
	})
	if err != nil {
		return nil, fmt.Errorf("storage: failed to upload %s: %w", fileName, err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("storage: upload rejected: %s", result.Error.Message)
	}
	if result.PublicID == "" {
		return nil, fmt.Errorf("storage: no public ID returned for %s", fileName)
	}
	utils.GetLogger().Debug("storage: uploaded file",
		zap.String("publicID", result.PublicID), zap.Int("bytes", result.Bytes))
	return &UploadedFile{
		PublicID:     result.PublicID,
		URL:          result.SecureURL,
		ResourceType: result.ResourceType,
		Bytes:        int64(result.Bytes),
	}, nil
}

func (s *CloudinaryStorage) Delete(ctx context.Context, publicID, resourceType string) error {
	if resourceType == "" {
		resourceType = "image"
	}
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID, Type: string(deliveryType), ResourceType: resourceType}); err != nil {
		return fmt.Errorf("storage: failed to delete %s: %w", publicID, err)
	}
	return nil
}

func (s *CloudinaryStorage) getAsset(resourceType, publicID string) (*asset.Asset, error) {
	switch resourceType {
	case "image":
		return s.cld.Image(publicID)
	case "video":
		return s.cld.Video(publicID)
	case "raw":
		return s.cld.File(publicID)
	default:
		return s.cld.Media(publicID)
	}
}

// SignedURL builds an authenticated delivery URL for publicID. Without a token
// key the URL carries only the path signature and does not expire.
func (s *CloudinaryStorage) SignedURL(resourceType, publicID string) (string, error) {
	a, err := s.getAsset(resourceType, publicID)
	if err != nil {
		return "", fmt.Errorf("storage: failed to get asset %s: %w", publicID, err)
	}
	a.DeliveryType = deliveryType
	a.Config.URL.Secure = true
	a.Config.URL.SignURL = true
	a.Config.URL.Analytics = false
	if s.tokenKey != "" {
		a.Config.AuthToken.Key = s.tokenKey
		a.Config.AuthToken.Duration = int64(s.urlTTL / time.Second)
		a.AuthToken.Config = &a.Config.AuthToken
	}
	url, err := a.String()
	if err != nil {
		return "", fmt.Errorf("storage: failed to sign URL for %s: %w", publicID, err)
	}
	return url, nil
}
