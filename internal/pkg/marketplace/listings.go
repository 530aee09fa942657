package marketplace

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ManuelReschke/ScrapMarket/app/models"
	"github.com/ManuelReschke/ScrapMarket/app/repository"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/entitlements"
)

const maxPhotosPerListing = 8

// ListingInput is the editable part of a listing.
type ListingInput struct {
	Title        string  `form:"title" json:"title"`
	Description  string  `form:"description" json:"description"`
	Material     string  `form:"material" json:"material"`
	Quantity     float64 `form:"quantity" json:"quantity"`
	Unit         string  `form:"unit" json:"unit"`
	PriceCents   int64   `form:"price_cents" json:"price_cents"`
	Currency     string  `form:"currency" json:"currency"`
	City         string  `form:"city" json:"city"`
	ContactPhone string  `form:"contact_phone" json:"contact_phone"`
	ContactEmail string  `form:"contact_email" json:"contact_email"`
}

func (in ListingInput) apply(l *models.Listing) {
	l.Title = strings.TrimSpace(in.Title)
	l.Description = strings.TrimSpace(in.Description)
	l.Material = in.Material
	l.Quantity = in.Quantity
	l.Unit = in.Unit
	if l.Unit == "" {
		l.Unit = "kg"
	}
	l.PriceCents = in.PriceCents
	l.Currency = strings.ToUpper(in.Currency)
	if l.Currency == "" {
		l.Currency = "EUR"
	}
	l.City = strings.TrimSpace(in.City)
	l.ContactPhone = strings.TrimSpace(in.ContactPhone)
	l.ContactEmail = strings.TrimSpace(in.ContactEmail)
}

// Search is a browse query from the listing index.
type Search struct {
	Query    string
	Material string
	City     string
	SellerID uint
	Page     int
}

// SearchResult is one page of listings.
type SearchResult struct {
	Listings []models.Listing
	Total    int64
	Page     int
	Pages    int
}

// SearchListings returns active listings matching q.
func (s *Service) SearchListings(ctx context.Context, q Search) (*SearchResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	listings, total, err := s.repos.Listing.Search(ctx, repository.ListingFilter{
		Query:    q.Query,
		Material: q.Material,
		City:     q.City,
		SellerID: q.SellerID,
		Status:   models.LISTING_STATUS_ACTIVE,
		Offset:   offset(q.Page),
		Limit:    PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}
	pages := int((total + PageSize - 1) / PageSize)
	return &SearchResult{Listings: listings, Total: total, Page: q.Page, Pages: pages}, nil
}

// PhotoURLs are presigned links for one photo.
type PhotoURLs struct {
	Full  string `json:"full"`
	Thumb string `json:"thumb"`
}

// ListingDetail is a listing as seen by one viewer.
type ListingDetail struct {
	Listing      *models.Listing
	IsOwner      bool
	ShowContacts bool
	IsSaved      bool
	IsFollowing  bool
	Photos       []PhotoURLs
}

// GetListing loads a listing for viewerID (0 for guests) and counts the view.
// Archived listings are visible to their owner only.
func (s *Service) GetListing(ctx context.Context, viewerID uint, uuid string) (*ListingDetail, error) {
	l, err := s.repos.Listing.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, notFound(err)
	}
	owner := l.IsOwnedBy(viewerID)
	if l.Status == models.LISTING_STATUS_ARCHIVED && !owner {
		return nil, ErrNotFound
	}

	d := &ListingDetail{
		Listing:      l,
		IsOwner:      owner,
		ShowContacts: owner || s.allows(ctx, viewerID, entitlements.FeatureRevealContacts),
	}
	if !d.ShowContacts {
		l.ContactPhone = ""
		l.ContactEmail = ""
	}
	if viewerID != 0 && !owner {
		if d.IsSaved, err = s.repos.Social.IsSaved(ctx, viewerID, l.ID); err != nil {
			s.log.Warn().Err(err).Msg("saved lookup failed")
		}
		if d.IsFollowing, err = s.repos.Social.IsFollowing(ctx, viewerID, l.SellerID); err != nil {
			s.log.Warn().Err(err).Msg("follow lookup failed")
		}
	}
	if !owner && s.views != nil {
		if err := s.views.AddListingView(ctx, l.ID); err != nil {
			s.log.Warn().Err(err).Uint("listing_id", l.ID).Msg("count view failed")
		}
	}
	if s.photos != nil {
		for _, p := range l.Photos {
			full, thumb, err := s.photos.URLs(ctx, p)
			if err != nil {
				s.log.Warn().Err(err).Uint("photo_id", p.ID).Msg("presign photo failed")
				continue
			}
			d.Photos = append(d.Photos, PhotoURLs{Full: full, Thumb: thumb})
		}
	}
	return d, nil
}

// CreateListing publishes a listing and tells the seller's followers.
func (s *Service) CreateListing(ctx context.Context, sellerID uint, in ListingInput) (*models.Listing, error) {
	l := &models.Listing{SellerID: sellerID, Status: models.LISTING_STATUS_ACTIVE}
	in.apply(l)
	if err := l.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := s.repos.Listing.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}

	followers, err := s.repos.Social.ListFollowerIDs(ctx, sellerID)
	if err != nil {
		s.log.Warn().Err(err).Uint("seller_id", sellerID).Msg("list followers failed")
	}
	for _, f := range followers {
		if err := s.notify(ctx, f, models.NOTIFICATION_FOLLOWED_POST, "New listing", l.Title, "/listings/"+l.UUID); err != nil {
			s.log.Warn().Err(err).Uint("user_id", f).Msg("follower notification failed")
		}
	}
	return l, nil
}

func (s *Service) ownedListing(ctx context.Context, viewerID uint, uuid string) (*models.Listing, error) {
	l, err := s.repos.Listing.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, notFound(err)
	}
	if !l.IsOwnedBy(viewerID) {
		return nil, ErrForbidden
	}
	return l, nil
}

// UpdateListing edits an owned listing.
func (s *Service) UpdateListing(ctx context.Context, viewerID uint, uuid string, in ListingInput) (*models.Listing, error) {
	l, err := s.ownedListing(ctx, viewerID, uuid)
	if err != nil {
		return nil, err
	}
	in.apply(l)
	if err := l.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := s.repos.Listing.Update(ctx, l); err != nil {
		return nil, fmt.Errorf("update listing: %w", err)
	}
	return l, nil
}

// MarkSold closes an owned listing as sold.
func (s *Service) MarkSold(ctx context.Context, viewerID uint, uuid string) error {
	return s.setStatus(ctx, viewerID, uuid, models.LISTING_STATUS_SOLD)
}

// Archive hides an owned listing.
func (s *Service) Archive(ctx context.Context, viewerID uint, uuid string) error {
	return s.setStatus(ctx, viewerID, uuid, models.LISTING_STATUS_ARCHIVED)
}

func (s *Service) setStatus(ctx context.Context, viewerID uint, uuid, status string) error {
	l, err := s.ownedListing(ctx, viewerID, uuid)
	if err != nil {
		return err
	}
	if l.Status == status {
		return nil
	}
	if l.Status == models.LISTING_STATUS_ARCHIVED {
		return fmt.Errorf("%w: listing is archived", ErrInvalid)
	}
	return s.repos.Listing.UpdateStatus(ctx, l.ID, status)
}

// AddPhoto uploads a photo to an owned listing.
func (s *Service) AddPhoto(ctx context.Context, viewerID uint, uuid string, r io.Reader) (*models.ListingPhoto, error) {
	if s.photos == nil {
		return nil, ErrPhotosDisabled
	}
	l, err := s.ownedListing(ctx, viewerID, uuid)
	if err != nil {
		return nil, err
	}
	n, err := s.repos.Listing.CountPhotos(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	if n >= maxPhotosPerListing {
		return nil, fmt.Errorf("%w: at most %d photos per listing", ErrInvalid, maxPhotosPerListing)
	}
	photo, err := s.photos.Upload(ctx, l, r)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Listing.AddPhoto(ctx, photo); err != nil {
		return nil, fmt.Errorf("save photo: %w", err)
	}
	return photo, nil
}
