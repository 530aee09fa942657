package marketplace

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ManuelReschke/ScrapMarket/app/models"
	"github.com/ManuelReschke/ScrapMarket/app/repository"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/push"
)

// memDB backs every fake repository.
type memDB struct {
	nextID        uint
	users         map[uint]*models.User
	listings      map[uint]*models.Listing
	photos        []models.ListingPhoto
	offers        map[uint]*models.Offer
	conversations map[uint]*models.Conversation
	messages      []models.Message
	follows       []models.Follow
	saved         []models.SavedListing
	notifications []models.Notification
	devices       map[string]*models.DeviceToken

	conversationErr error
	messageErr      error
	notifyErr       error
}

func newMemDB() *memDB {
	return &memDB{
		users:         map[uint]*models.User{},
		listings:      map[uint]*models.Listing{},
		offers:        map[uint]*models.Offer{},
		conversations: map[uint]*models.Conversation{},
		devices:       map[string]*models.DeviceToken{},
	}
}

func (m *memDB) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memDB) repos() *repository.Repositories {
	return &repository.Repositories{
		User:         userRepo{m},
		Listing:      listingRepo{m},
		Offer:        offerRepo{m},
		Conversation: conversationRepo{m},
		Social:       socialRepo{m},
		Notification: notificationRepo{m},
	}
}

func (m *memDB) addUser(name string) *models.User {
	u := &models.User{ID: m.id(), Name: name, Email: name + "@example.com", Status: models.STATUS_ACTIVE}
	m.users[u.ID] = u
	return u
}

func (m *memDB) addListing(sellerID uint, status string) *models.Listing {
	l := &models.Listing{
		ID: m.id(), UUID: uuid.NewString(), SellerID: sellerID, Title: "Copper wire",
		Material: "metal", Quantity: 100, Unit: "kg", PriceCents: 450, Currency: "EUR",
		ContactPhone: "+49 30 1234", ContactEmail: "seller@example.com", Status: status,
	}
	m.listings[l.ID] = l
	return l
}

type userRepo struct{ m *memDB }

func (r userRepo) Create(_ context.Context, u *models.User) error {
	u.ID = r.m.id()
	r.m.users[u.ID] = u
	return nil
}
func (r userRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	if u, ok := r.m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (r userRepo) GetByEmail(context.Context, string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (r userRepo) GetByActivationToken(context.Context, string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (r userRepo) GetByAPIKeyHash(context.Context, string) (*models.User, *models.APIKey, error) {
	return nil, nil, gorm.ErrRecordNotFound
}
func (r userRepo) GetAPIKey(context.Context, uint) (*models.APIKey, error) {
	return nil, gorm.ErrRecordNotFound
}
func (r userRepo) SaveAPIKey(context.Context, *models.APIKey) error       { return nil }
func (r userRepo) Update(context.Context, *models.User) error             { return nil }
func (r userRepo) TouchLastLogin(context.Context, uint) error             { return nil }
func (r userRepo) ListAfterID(context.Context, uint, int) ([]models.User, error) { return nil, nil }
func (r userRepo) GetProviderAccount(context.Context, string, string) (*models.ProviderAccount, error) {
	return nil, gorm.ErrRecordNotFound
}
func (r userRepo) SaveProviderAccount(context.Context, *models.ProviderAccount) error { return nil }

type listingRepo struct{ m *memDB }

func (r listingRepo) Create(_ context.Context, l *models.Listing) error {
	l.ID = r.m.id()
	if l.UUID == "" {
		l.UUID = uuid.NewString()
	}
	r.m.listings[l.ID] = l
	return nil
}
func (r listingRepo) GetByID(_ context.Context, id uint) (*models.Listing, error) {
	if l, ok := r.m.listings[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (r listingRepo) GetByUUID(_ context.Context, id string) (*models.Listing, error) {
	for _, l := range r.m.listings {
		if l.UUID == id {
			cp := *l
			for _, p := range r.m.photos {
				if p.ListingID == l.ID {
					cp.Photos = append(cp.Photos, p)
				}
			}
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (r listingRepo) Update(_ context.Context, l *models.Listing) error {
	cp := *l
	r.m.listings[l.ID] = &cp
	return nil
}
func (r listingRepo) UpdateStatus(_ context.Context, id uint, status string) error {
	r.m.listings[id].Status = status
	return nil
}
func (r listingRepo) Delete(_ context.Context, id uint) error {
	delete(r.m.listings, id)
	return nil
}
func (r listingRepo) Search(_ context.Context, f repository.ListingFilter) ([]models.Listing, int64, error) {
	var out []models.Listing
	for _, l := range r.m.listings {
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		if f.Material != "" && l.Material != f.Material {
			continue
		}
		if f.Query != "" && !strings.Contains(l.Title, f.Query) {
			continue
		}
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	total := int64(len(out))
	if f.Offset >= len(out) {
		return nil, total, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total, nil
}
func (r listingRepo) ListBySellers(_ context.Context, ids []uint, _ int) ([]models.Listing, error) {
	var out []models.Listing
	for _, l := range r.m.listings {
		for _, id := range ids {
			if l.SellerID == id && l.Status == models.LISTING_STATUS_ACTIVE {
				out = append(out, *l)
			}
		}
	}
	return out, nil
}
func (r listingRepo) AddPhoto(_ context.Context, p *models.ListingPhoto) error {
	p.ID = r.m.id()
	r.m.photos = append(r.m.photos, *p)
	return nil
}
func (r listingRepo) CountPhotos(_ context.Context, listingID uint) (int64, error) {
	var n int64
	for _, p := range r.m.photos {
		if p.ListingID == listingID {
			n++
		}
	}
	return n, nil
}
func (r listingRepo) AddViews(_ context.Context, inc map[uint]int64) error {
	for id, n := range inc {
		r.m.listings[id].ViewCount += uint64(n)
	}
	return nil
}

type offerRepo struct{ m *memDB }

func (r offerRepo) Create(_ context.Context, o *models.Offer) error {
	o.ID = r.m.id()
	r.m.offers[o.ID] = o
	return nil
}
func (r offerRepo) GetByID(_ context.Context, id uint) (*models.Offer, error) {
	if o, ok := r.m.offers[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (r offerRepo) UpdateStatus(_ context.Context, id uint, status string) error {
	r.m.offers[id].Status = status
	return nil
}
func (r offerRepo) ListReceived(_ context.Context, sellerID uint, _, _ int) ([]models.Offer, error) {
	var out []models.Offer
	for _, o := range r.m.offers {
		if r.m.listings[o.ListingID].SellerID == sellerID {
			out = append(out, *o)
		}
	}
	return out, nil
}
func (r offerRepo) ListSent(_ context.Context, buyerID uint, _, _ int) ([]models.Offer, error) {
	var out []models.Offer
	for _, o := range r.m.offers {
		if o.BuyerID == buyerID {
			out = append(out, *o)
		}
	}
	return out, nil
}
func (r offerRepo) ListByListing(context.Context, uint) ([]models.Offer, error) { return nil, nil }

type conversationRepo struct{ m *memDB }

func (r conversationRepo) GetOrCreate(_ context.Context, listingID, buyerID, sellerID uint) (*models.Conversation, error) {
	if r.m.conversationErr != nil {
		return nil, r.m.conversationErr
	}
	for _, c := range r.m.conversations {
		if c.ListingID == listingID && c.BuyerID == buyerID {
			return c, nil
		}
	}
	c := &models.Conversation{ID: r.m.id(), ListingID: listingID, BuyerID: buyerID, SellerID: sellerID}
	r.m.conversations[c.ID] = c
	return c, nil
}
func (r conversationRepo) GetByID(_ context.Context, id uint) (*models.Conversation, error) {
	if c, ok := r.m.conversations[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (r conversationRepo) ListForUser(_ context.Context, userID uint, _, _ int) ([]models.Conversation, error) {
	var out []models.Conversation
	for _, c := range r.m.conversations {
		if c.HasParticipant(userID) {
			out = append(out, *c)
		}
	}
	return out, nil
}
func (r conversationRepo) AddMessage(_ context.Context, msg *models.Message) error {
	if r.m.messageErr != nil {
		return r.m.messageErr
	}
	msg.ID = r.m.id()
	r.m.messages = append(r.m.messages, *msg)
	return nil
}
func (r conversationRepo) ListMessages(_ context.Context, convID uint, _ int) ([]models.Message, error) {
	var out []models.Message
	for _, msg := range r.m.messages {
		if msg.ConversationID == convID {
			out = append(out, msg)
		}
	}
	return out, nil
}
func (r conversationRepo) MarkRead(_ context.Context, convID, readerID uint) error {
	now := time.Now()
	for i := range r.m.messages {
		if r.m.messages[i].ConversationID == convID && r.m.messages[i].SenderID != readerID {
			r.m.messages[i].ReadAt = &now
		}
	}
	return nil
}

type socialRepo struct{ m *memDB }

func (r socialRepo) Follow(_ context.Context, a, b uint) error {
	r.m.follows = append(r.m.follows, models.Follow{ID: r.m.id(), FollowerID: a, FolloweeID: b})
	return nil
}
func (r socialRepo) Unfollow(_ context.Context, a, b uint) error {
	out := r.m.follows[:0]
	for _, f := range r.m.follows {
		if f.FollowerID != a || f.FolloweeID != b {
			out = append(out, f)
		}
	}
	r.m.follows = out
	return nil
}
func (r socialRepo) IsFollowing(_ context.Context, a, b uint) (bool, error) {
	for _, f := range r.m.follows {
		if f.FollowerID == a && f.FolloweeID == b {
			return true, nil
		}
	}
	return false, nil
}
func (r socialRepo) ListFollowing(_ context.Context, a uint) ([]models.Follow, error) {
	var out []models.Follow
	for _, f := range r.m.follows {
		if f.FollowerID == a {
			out = append(out, f)
		}
	}
	return out, nil
}
func (r socialRepo) ListFollowerIDs(_ context.Context, b uint) ([]uint, error) {
	var out []uint
	for _, f := range r.m.follows {
		if f.FolloweeID == b {
			out = append(out, f.FollowerID)
		}
	}
	return out, nil
}
func (r socialRepo) SaveListing(_ context.Context, userID, listingID uint) error {
	if ok, _ := r.IsSaved(context.Background(), userID, listingID); ok {
		return nil
	}
	r.m.saved = append(r.m.saved, models.SavedListing{ID: r.m.id(), UserID: userID, ListingID: listingID})
	return nil
}
func (r socialRepo) UnsaveListing(_ context.Context, userID, listingID uint) error {
	out := r.m.saved[:0]
	for _, s := range r.m.saved {
		if s.UserID != userID || s.ListingID != listingID {
			out = append(out, s)
		}
	}
	r.m.saved = out
	return nil
}
func (r socialRepo) IsSaved(_ context.Context, userID, listingID uint) (bool, error) {
	for _, s := range r.m.saved {
		if s.UserID == userID && s.ListingID == listingID {
			return true, nil
		}
	}
	return false, nil
}
func (r socialRepo) ListSaved(_ context.Context, userID uint) ([]models.SavedListing, error) {
	var out []models.SavedListing
	for _, s := range r.m.saved {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

type notificationRepo struct{ m *memDB }

func (r notificationRepo) Create(_ context.Context, n *models.Notification) error {
	if r.m.notifyErr != nil {
		return r.m.notifyErr
	}
	n.ID = r.m.id()
	r.m.notifications = append(r.m.notifications, *n)
	return nil
}
func (r notificationRepo) ListForUser(_ context.Context, userID uint, _ int) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range r.m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}
func (r notificationRepo) CountUnread(_ context.Context, userID uint) (int64, error) {
	var c int64
	for _, n := range r.m.notifications {
		if n.UserID == userID && n.ReadAt == nil {
			c++
		}
	}
	return c, nil
}
func (r notificationRepo) MarkRead(_ context.Context, userID, id uint) error {
	for i := range r.m.notifications {
		if r.m.notifications[i].ID == id && r.m.notifications[i].UserID == userID {
			now := time.Now()
			r.m.notifications[i].ReadAt = &now
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}
func (r notificationRepo) MarkAllRead(_ context.Context, userID uint) error {
	now := time.Now()
	for i := range r.m.notifications {
		if r.m.notifications[i].UserID == userID {
			r.m.notifications[i].ReadAt = &now
		}
	}
	return nil
}
func (r notificationRepo) SaveDeviceToken(_ context.Context, d *models.DeviceToken) error {
	r.m.devices[d.Token] = d
	return nil
}
func (r notificationRepo) ListDeviceTokens(_ context.Context, userID uint) ([]string, error) {
	var out []string
	for t, d := range r.m.devices {
		if d.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out, nil
}
func (r notificationRepo) DeleteDeviceToken(_ context.Context, token string) error {
	delete(r.m.devices, token)
	return nil
}

type premiumSet map[uint]bool

func (p premiumSet) IsPremium(_ context.Context, userID uint) bool { return p[userID] }

type countingViews map[uint]int

func (c countingViews) AddListingView(_ context.Context, id uint) error {
	c[id]++
	return nil
}

type recordingPush struct {
	sent  []push.Message
	stale []string
}

func (p *recordingPush) Send(_ context.Context, tokens []string, msg push.Message) ([]string, error) {
	p.sent = append(p.sent, msg)
	return p.stale, nil
}

type fakePhotos struct{ err error }

func (f fakePhotos) Upload(_ context.Context, l *models.Listing, r io.Reader) (*models.ListingPhoto, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	return &models.ListingPhoto{ListingID: l.ID, ObjectKey: "full.jpg", ThumbKey: "thumb.jpg"}, nil
}

func (f fakePhotos) URLs(_ context.Context, p models.ListingPhoto) (string, string, error) {
	return "https://cdn/" + p.ObjectKey, "https://cdn/" + p.ThumbKey, nil
}

var errBoom = errors.New("boom")

type fixture struct {
	db      *memDB
	svc     *Service
	premium premiumSet
	views   countingViews
	push    *recordingPush
	seller  *models.User
	buyer   *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		db:      newMemDB(),
		premium: premiumSet{},
		views:   countingViews{},
		push:    &recordingPush{},
	}
	f.seller = f.db.addUser("seller")
	f.buyer = f.db.addUser("buyer")
	f.svc = New(Deps{
		Repos:        f.db.repos(),
		Entitlements: f.premium,
		Views:        f.views,
		Photos:       fakePhotos{},
		Push:         f.push,
		Logger:       zerolog.Nop(),
	})
	return f
}
