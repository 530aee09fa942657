package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/ScrapMarket/app/models"
	"github.com/ManuelReschke/ScrapMarket/app/repository"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/billing"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/session"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/usercontext"
	"github.com/ManuelReschke/ScrapMarket/views"
)

type fakeUsers struct {
	repository.UserRepository
	byEmail  map[string]*models.User
	byToken  map[string]*models.User
	created  []*models.User
	updated  []*models.User
	touched  []uint
	savedKey *models.APIKey
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]*models.User{}, byToken: map[string]*models.User{}}
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[strings.ToLower(email)]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) GetByActivationToken(_ context.Context, token string) (*models.User, error) {
	if u, ok := f.byToken[token]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	u.ID = uint(len(f.created) + 1)
	f.created = append(f.created, u)
	return nil
}

func (f *fakeUsers) Update(_ context.Context, u *models.User) error {
	f.updated = append(f.updated, u)
	return nil
}

func (f *fakeUsers) TouchLastLogin(_ context.Context, id uint) error {
	f.touched = append(f.touched, id)
	return nil
}

func (f *fakeUsers) GetAPIKey(context.Context, uint) (*models.APIKey, error) {
	if f.savedKey != nil {
		return f.savedKey, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) SaveAPIKey(_ context.Context, key *models.APIKey) error {
	f.savedKey = key
	return nil
}

type fakeBilling struct {
	configured  bool
	webhookRes  billing.WebhookResult
	webhookErr  error
	gotSig      string
	gotPayload  []byte
	checkoutURL string
	checkoutErr error
	gotPrice    string
	gotViewer   *billing.Viewer
	syncErr     error
	gotSession  string
}

func (f *fakeBilling) Configured() bool { return f.configured }

func (f *fakeBilling) HandleWebhook(_ context.Context, payload []byte, sig string) (billing.WebhookResult, error) {
	f.gotPayload, f.gotSig = payload, sig
	return f.webhookRes, f.webhookErr
}

func (f *fakeBilling) StartCheckout(_ context.Context, v *billing.Viewer, priceID string) (string, error) {
	f.gotViewer, f.gotPrice = v, priceID
	return f.checkoutURL, f.checkoutErr
}

func (f *fakeBilling) SyncCheckoutSession(_ context.Context, v *billing.Viewer, sessionID string) error {
	f.gotViewer, f.gotSession = v, sessionID
	return f.syncErr
}

func (f *fakeBilling) ResolveContext(_ context.Context, v *billing.Viewer) (*billing.Context, error) {
	if v == nil {
		return nil, billing.ErrUnauthenticated
	}
	return &billing.Context{UserID: v.UserID, Email: v.Email}, nil
}

func (f *fakeBilling) LoadSnapshot(context.Context, string) *billing.Snapshot { return nil }

type sentMail struct{ to, subject, body string }

type fakeMailer struct{ sent []sentMail }

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

func newTestController(d Deps) *Controller {
	if d.Users == nil {
		d.Users = newFakeUsers()
	}
	if d.Billing == nil {
		d.Billing = &fakeBilling{}
	}
	if d.Sessions == nil {
		d.Sessions = session.NewWithStorage(nil, false)
	}
	if d.Mailer == nil {
		d.Mailer = &fakeMailer{}
	}
	d.BaseURL = "http://localhost:8080"
	d.Logger = zerolog.Nop()
	return New(d)
}

// newTestApp renders with the embedded templates. A non-nil uc is installed
// as the request's user context.
func newTestApp(t *testing.T, uc *usercontext.UserContext) *fiber.App {
	t.Helper()
	engine := html.NewFileSystem(http.FS(views.FS), ".html")
	engine.AddFuncMap(views.Funcs())
	app := fiber.New(fiber.Config{Views: engine})
	if uc != nil {
		app.Use(func(c *fiber.Ctx) error {
			usercontext.Set(c, *uc)
			return c.Next()
		})
	}
	return app
}

func loggedIn() *usercontext.UserContext {
	return &usercontext.UserContext{UserID: 7, Username: "seller", Email: "seller@example.com", EmailConfirmed: true, IsLoggedIn: true}
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", fiber.MIMEApplicationForm)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestParseCents(t *testing.T) {
	cases := map[string]int64{
		"":       0,
		"12":     1200,
		"12.5":   1250,
		"12,50":  1250,
		" 0.07 ": 7,
	}
	for in, want := range cases {
		got, err := parseCents(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"abc", "-1", "1.234", ".5", "12.-5"} {
		_, err := parseCents(in)
		assert.ErrorIs(t, err, errBadAmount, in)
	}
	assert.Equal(t, "12.50", formatCents(1250))
	assert.Equal(t, "0.07", formatCents(7))
}

func TestHandleNotFound(t *testing.T) {
	ctl := newTestController(Deps{})
	app := newTestApp(t, nil)
	app.Use(ctl.HandleNotFound)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "This page does not exist")
}

func TestBackToOnlyFollowsLocalReferer(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(backTo(c, "/fallback")) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Referer", "https://evil.example/phish")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "/fallback", readBody(t, resp))
}
