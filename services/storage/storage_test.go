package storage

import (
	"strings"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *CloudinaryStorage {
	cld, err := cloudinary.NewFromParams("demo", "key", "secret")
	require.NoError(t, err)
	return NewCloudinaryStorage(cld, "", 0)
}

func TestSignedURL(t *testing.T) {
	s := newTestStorage(t)

	url, err := s.SignedURL("raw", "sessions/s1/brief.pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://res.cloudinary.com/demo/raw/authenticated/s--"), url)
	assert.True(t, strings.HasSuffix(url, "/sessions/s1/brief.pdf"), url)

	image, err := s.SignedURL("image", "sessions/s1/moodboard")
	require.NoError(t, err)
	assert.Contains(t, image, "/image/authenticated/s--")
}

func TestSignedURLDependsOnAsset(t *testing.T) {
	s := newTestStorage(t)

	a, err := s.SignedURL("raw", "sessions/s1/a.pdf")
	require.NoError(t, err)
	b, err := s.SignedURL("raw", "sessions/s1/b.pdf")
	require.NoError(t, err)

	signature := func(url string) string {
		_, rest, _ := strings.Cut(url, "/s--")
		sig, _, _ := strings.Cut(rest, "--/")
		return sig
	}
	assert.NotEmpty(t, signature(a))
	assert.NotEqual(t, signature(a), signature(b))
}

func TestDefaultURLTTL(t *testing.T) {
	s := NewCloudinaryStorage(nil, "token-key", 0)
	assert.Equal(t, DefaultURLTTL, s.urlTTL)
}
