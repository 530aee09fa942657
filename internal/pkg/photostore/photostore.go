package photostore

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/ManuelReschke/ScrapMarket/app/models"
)

const urlTTL = 15 * time.Minute

// Store processes listing photos and keeps them in object storage.
type Store struct {
	objects Objects
	now     func() time.Time
}

func New(objects Objects) *Store {
	return &Store{objects: objects, now: time.Now}
}

// ObjectKey formats listings/<listing>/YYYY/MM/<id><suffix>.jpg.
func ObjectKey(listingUUID, photoID, suffix string, at time.Time) string {
	return fmt.Sprintf("listings/%s/%04d/%02d/%s%s.jpg", listingUUID, at.Year(), int(at.Month()), photoID, suffix)
}

// Upload processes r and stores the full image and its thumbnail. The
// returned photo is not yet persisted.
func (s *Store) Upload(ctx context.Context, listing *models.Listing, r io.Reader) (*models.ListingPhoto, error) {
	p, err := Process(r)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	now := s.now()
	full := ObjectKey(listing.UUID, id, "", now)
	thumb := ObjectKey(listing.UUID, id, "_thumb", now)

	if err := s.objects.Put(ctx, full, p.Full, "image/jpeg"); err != nil {
		return nil, err
	}
	if err := s.objects.Put(ctx, thumb, p.Thumb, "image/jpeg"); err != nil {
		_ = s.objects.Delete(ctx, full)
		return nil, err
	}
	return &models.ListingPhoto{
		ListingID: listing.ID,
		ObjectKey: full,
		ThumbKey:  thumb,
		Width:     p.Width,
		Height:    p.Height,
	}, nil
}

// URLs returns presigned URLs for the full image and the thumbnail.
func (s *Store) URLs(ctx context.Context, photo models.ListingPhoto) (full, thumb string, err error) {
	if full, err = s.objects.PresignGet(ctx, photo.ObjectKey, urlTTL); err != nil {
		return "", "", err
	}
	if thumb, err = s.objects.PresignGet(ctx, photo.ThumbKey, urlTTL); err != nil {
		return "", "", err
	}
	return full, thumb, nil
}
