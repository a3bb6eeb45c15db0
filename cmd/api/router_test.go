package api

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	authdelivery "propertyhub/internal/auth/delivery"
	authdomain "propertyhub/internal/auth/domain"
	authRepo "propertyhub/internal/auth/repository"
	"propertyhub/internal/auth/token"
	authUsecase "propertyhub/internal/auth/usecase"
	"propertyhub/internal/property/domain"
	"propertyhub/internal/property/dto"
	propertyRepo "propertyhub/internal/property/repository"
	propertyUsecase "propertyhub/internal/property/usecase"
	"propertyhub/pkg/config"
	"propertyhub/pkg/database"
	"propertyhub/pkg/ratelimit"
	"propertyhub/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/justinas/nosurf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type silentNotifier struct{}

func (silentNotifier) AccountCreated(*authdomain.User)         {}
func (silentNotifier) PasswordResetRequested(*authdomain.User) {}

type testApp struct {
	engine     *gin.Engine
	db         *gorm.DB
	tokens     *token.Service
	properties propertyRepo.PropertyRepository

	csrfCookie *http.Cookie
	csrfToken  string
}

var csrfFieldPattern = regexp.MustCompile(`name="csrf_token" value="([^"]*)"`)

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewSQLiteConnection(":memory:")
	require.NoError(t, err)
	require.NoError(t, authRepo.Migrate(db))
	require.NoError(t, propertyRepo.Migrate(db))
	require.NoError(t, propertyRepo.SeedCatalog(context.Background(), db))
	t.Cleanup(func() { _ = database.Close(db) })

	tokens, err := token.NewService("router-secret")
	require.NoError(t, err)

	images := storage.NewLocalStore(t.TempDir(), "/public/uploads")
	properties := propertyRepo.NewPropertyRepository(db)

	authUc := authUsecase.NewAuthUsecase(authRepo.NewUserRepository(db), tokens, silentNotifier{})
	propertyUc := propertyUsecase.NewPropertyUsecase(
		properties,
		propertyRepo.NewCatalogRepository(db),
		propertyRepo.NewMessageRepository(db),
		images,
	)

	cfg := &config.Config{
		CookieSameSite:  http.SameSiteLaxMode,
		LoginRateLimit:  2,
		LoginRateWindow: time.Minute,
	}
	handler := NewHandler(authUc, propertyUc, images, ratelimit.NewMemoryLimiter(), cfg)

	app := &testApp{engine: handler.Engine(), db: db, tokens: tokens, properties: properties}

	w := app.serve(httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	require.Equal(t, http.StatusOK, w.Code)
	app.csrfCookie = responseCookie(w, nosurf.CookieName)
	require.NotNil(t, app.csrfCookie)
	app.csrfToken = csrfTokenIn(t, w.Body.String())

	return app
}

func csrfTokenIn(t *testing.T, page string) string {
	t.Helper()
	match := csrfFieldPattern.FindStringSubmatch(page)
	require.Len(t, match, 2, "page has no csrf field")
	require.NotEmpty(t, match[1])
	return html.UnescapeString(match[1])
}

func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// seller creates a confirmed account and returns its session cookie
func (a *testApp) seller(t *testing.T, email string) (*authdomain.User, *http.Cookie) {
	t.Helper()
	hash, err := authRepo.HashPassword("secret123")
	require.NoError(t, err)

	user := &authdomain.User{Name: "Seller", Email: email, Password: hash, Confirmed: true}
	require.NoError(t, authRepo.NewUserRepository(a.db).Create(context.Background(), user))

	sessionToken, err := a.tokens.Issue(user.Identity().ID)
	require.NoError(t, err)
	return user, &http.Cookie{Name: authdelivery.SessionCookieName, Value: sessionToken}
}

func (a *testApp) listing(t *testing.T, owner *authdomain.User, published bool) *domain.Property {
	t.Helper()
	property := &domain.Property{
		Title:       "Lake house",
		Description: "Two floors next to the lake",
		Bedrooms:    3,
		Parking:     1,
		Bathrooms:   2,
		Street:      "Shore Road 12",
		Lat:         "19.43",
		Lng:         "-99.13",
		Image:       "lake.jpg",
		Published:   published,
		CategoryID:  1,
		PriceID:     1,
		UserID:      owner.ID,
	}
	require.NoError(t, a.properties.Create(context.Background(), property))
	return property
}

func newRequest(method, path string, body url.Values, cookies ...*http.Cookie) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func (a *testApp) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// do sends the request like a browser holding the csrf cookie. The token
// goes in the header unless the form already carries it.
func (a *testApp) do(method, path string, body url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := newRequest(method, path, body, append(cookies, a.csrfCookie)...)
	if body.Get("csrf_token") == "" {
		req.Header.Set(nosurf.HeaderName, a.csrfToken)
	}
	return a.serve(req)
}

func TestGatedRoutes_RedirectWithoutSession(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/my-properties", "/properties/create", "/messages/any"} {
		w := app.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, authdelivery.LoginPath, w.Header().Get("Location"), path)
	}
}

func TestGatedRoutes_ForgedCookieIsCleared(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/my-properties", nil,
		&http.Cookie{Name: authdelivery.SessionCookieName, Value: "forged"})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, authdelivery.LoginPath, w.Header().Get("Location"))
	cleared := responseCookie(w, authdelivery.SessionCookieName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.True(t, cleared.MaxAge < 0)
}

func TestForeignProperty_RedirectsToDashboard(t *testing.T) {
	app := newTestApp(t)
	owner, _ := app.seller(t, "owner@example.com")
	_, intruder := app.seller(t, "intruder@example.com")
	property := app.listing(t, owner, true)

	cases := []struct {
		method string
		path   string
		body   url.Values
	}{
		{http.MethodGet, "/properties/edit/" + property.ID, nil},
		{http.MethodPost, "/properties/delete/" + property.ID, url.Values{}},
		{http.MethodPut, "/properties/" + property.ID, nil},
		{http.MethodGet, "/messages/" + property.ID, nil},
		{http.MethodGet, "/properties/edit/does-not-exist", nil},
	}

	for _, tc := range cases {
		w := app.do(tc.method, tc.path, tc.body, intruder)
		assert.Equal(t, http.StatusFound, w.Code, tc.method+" "+tc.path)
		assert.Equal(t, "/my-properties", w.Header().Get("Location"), tc.method+" "+tc.path)
	}

	stored, err := app.properties.FindByID(context.Background(), property.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Published)
}

func TestOwner_TogglesAndDeletes(t *testing.T) {
	app := newTestApp(t)
	owner, session := app.seller(t, "owner@example.com")
	property := app.listing(t, owner, true)

	w := app.do(http.MethodPut, "/properties/"+property.ID, nil, session)
	require.Equal(t, http.StatusOK, w.Code)

	var toggled dto.ToggleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &toggled))
	assert.True(t, toggled.Result)
	assert.False(t, toggled.Published)

	w = app.do(http.MethodGet, "/my-properties", nil, session)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Lake house")

	w = app.do(http.MethodPost, "/properties/delete/"+property.ID, url.Values{}, session)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/my-properties", w.Header().Get("Location"))

	gone, err := app.properties.FindByID(context.Background(), property.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestPublicPages(t *testing.T) {
	app := newTestApp(t)
	owner, _ := app.seller(t, "owner@example.com")
	visible := app.listing(t, owner, true)
	hidden := app.listing(t, owner, false)

	w := app.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(http.MethodGet, "/property/"+visible.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(http.MethodGet, "/property/"+hidden.ID, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/404", w.Header().Get("Location"))

	w = app.do(http.MethodGet, "/no/such/page", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/404", w.Header().Get("Location"))

	w = app.do(http.MethodGet, "/api/properties", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var markers []dto.MapProperty
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &markers))
	require.Len(t, markers, 1)
	assert.Equal(t, visible.ID, markers[0].ID)
}

func TestLogin_IsRateLimited(t *testing.T) {
	app := newTestApp(t)
	form := url.Values{"email": {"nobody@example.com"}, "password": {"wrong"}}

	assert.Equal(t, http.StatusUnauthorized, app.do(http.MethodPost, "/auth/login", form).Code)
	assert.Equal(t, http.StatusUnauthorized, app.do(http.MethodPost, "/auth/login", form).Code)

	w := app.do(http.MethodPost, "/auth/login", form)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestSendMessage(t *testing.T) {
	app := newTestApp(t)
	owner, ownerSession := app.seller(t, "owner@example.com")
	_, buyerSession := app.seller(t, "buyer@example.com")
	property := app.listing(t, owner, true)
	path := "/property/" + property.ID
	form := url.Values{"body": {"Is the house still available?"}}

	w := app.do(http.MethodPost, path, form, ownerSession)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(http.MethodPost, path, url.Values{"body": {"short"}}, buyerSession)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(http.MethodPost, path, form, buyerSession)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = app.do(http.MethodPost, path, form)
	assert.Equal(t, http.StatusFound, w.Code)

	w = app.do(http.MethodGet, "/messages/"+property.ID, nil, ownerSession)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "buyer@example.com")
}

func TestLogin_ForwardedForDoesNotBypassLimit(t *testing.T) {
	app := newTestApp(t)
	form := url.Values{"email": {"nobody@example.com"}, "password": {"wrong"}}

	throttled := 0
	for i := 0; i < 10; i++ {
		req := newRequest(http.MethodPost, "/auth/login", form, app.csrfCookie)
		req.Header.Set(nosurf.HeaderName, app.csrfToken)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		if app.serve(req).Code == http.StatusTooManyRequests {
			throttled++
		}
	}

	assert.Equal(t, 8, throttled)
}

func TestUnsafeRequests_RequireCSRFToken(t *testing.T) {
	app := newTestApp(t)
	owner, session := app.seller(t, "owner@example.com")
	property := app.listing(t, owner, true)

	// No token at all, as a cross-site form would send it.
	w := app.serve(newRequest(http.MethodPost, "/properties/delete/"+property.ID, url.Values{}, session))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Cookie present, token wrong.
	req := newRequest(http.MethodPost, "/auth/logout", url.Values{"csrf_token": {"forged"}}, session, app.csrfCookie)
	w = app.serve(req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Nil(t, responseCookie(w, authdelivery.SessionCookieName))

	req = newRequest(http.MethodPut, "/properties/"+property.ID, nil, session, app.csrfCookie)
	assert.Equal(t, http.StatusForbidden, app.serve(req).Code)

	stored, err := app.properties.FindByID(context.Background(), property.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Published)

	// The same delete with the page token goes through.
	w = app.do(http.MethodPost, "/properties/delete/"+property.ID, url.Values{"csrf_token": {app.csrfToken}}, session)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/my-properties", w.Header().Get("Location"))
}

func TestCreateForm_SubmitsRenderedFields(t *testing.T) {
	app := newTestApp(t)
	_, session := app.seller(t, "owner@example.com")

	w := app.do(http.MethodGet, "/properties/create", nil, session)
	require.Equal(t, http.StatusOK, w.Code)
	page := w.Body.String()

	start := strings.Index(page, `action="/properties/create"`)
	require.NotEqual(t, -1, start)
	formHTML := page[start : start+strings.Index(page[start:], "</form>")]

	assert.NotContains(t, formHTML, `type="hidden" name="lat"`)
	assert.Contains(t, formHTML, `name="lat"`)
	assert.Contains(t, formHTML, `name="lng"`)

	values := map[string]string{
		"csrf_token":  csrfTokenIn(t, formHTML),
		"title":       "Cabin in the woods",
		"description": "Quiet cabin with a fireplace",
		"category":    "5",
		"price":       "2",
		"bedrooms":    "2",
		"parking":     "1",
		"bathrooms":   "1",
		"street":      "Pine Road 4",
		"lat":         "19.4326",
		"lng":         "-99.1332",
	}

	form := url.Values{}
	for _, match := range regexp.MustCompile(`name="([a-z_]+)"`).FindAllStringSubmatch(formHTML, -1) {
		value, ok := values[match[1]]
		require.True(t, ok, "unexpected form field %s", match[1])
		form.Set(match[1], value)
	}
	require.Len(t, form, len(values))

	w = app.do(http.MethodPost, "/properties/create", form, session)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/properties/add-image/"))
}

func TestDashboard_ToggleIsScripted(t *testing.T) {
	app := newTestApp(t)
	owner, session := app.seller(t, "owner@example.com")
	property := app.listing(t, owner, true)

	w := app.do(http.MethodGet, "/my-properties", nil, session)
	require.Equal(t, http.StatusOK, w.Code)
	page := w.Body.String()

	assert.Contains(t, page, `data-property-id="`+property.ID+`"`)
	assert.Contains(t, page, `<meta name="csrf-token" content="`)
	assert.Contains(t, page, "method: 'PUT'")
	assert.Contains(t, page, "'X-CSRF-Token': token")
}
