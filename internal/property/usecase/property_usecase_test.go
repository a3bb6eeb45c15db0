package usecase

import (
	"context"
	"sync"
	"testing"

	authdomain "propertyhub/internal/auth/domain"
	authrepo "propertyhub/internal/auth/repository"
	"propertyhub/internal/property/domain"
	"propertyhub/internal/property/dto"
	"propertyhub/internal/property/repository"
	"propertyhub/pkg/database"
	"propertyhub/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngImage = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type memoryImageStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryImageStore() *memoryImageStore {
	return &memoryImageStore{objects: map[string][]byte{}}
}

func (s *memoryImageStore) Save(_ context.Context, name string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[name] = data
	return nil
}

func (s *memoryImageStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, name)
	return nil
}

func (s *memoryImageStore) URL(name string) string {
	return "https://cdn.example.com/" + name
}

func (s *memoryImageStore) has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[name]
	return ok
}

type fixture struct {
	uc     PropertyUsecase
	images *memoryImageStore
	seller authdomain.Identity
	buyer  authdomain.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewSQLiteConnection(":memory:")
	require.NoError(t, err)
	require.NoError(t, authrepo.Migrate(db))
	require.NoError(t, repository.Migrate(db))
	require.NoError(t, repository.SeedCatalog(ctx, db))
	t.Cleanup(func() { _ = database.Close(db) })

	users := authrepo.NewUserRepository(db)
	seller := &authdomain.User{Name: "Seller", Email: "seller@example.com", Password: "x", Confirmed: true}
	buyer := &authdomain.User{Name: "Buyer", Email: "buyer@example.com", Password: "x", Confirmed: true}
	require.NoError(t, users.Create(ctx, seller))
	require.NoError(t, users.Create(ctx, buyer))

	images := newMemoryImageStore()
	uc := NewPropertyUsecase(
		repository.NewPropertyRepository(db),
		repository.NewCatalogRepository(db),
		repository.NewMessageRepository(db),
		images,
	)

	return &fixture{uc: uc, images: images, seller: seller.Identity(), buyer: buyer.Identity()}
}

func validRequest(title string) *dto.PropertyRequest {
	return &dto.PropertyRequest{
		Title:       title,
		Description: "Three bedroom house with garden",
		Category:    1,
		Price:       3,
		Bedrooms:    3,
		Parking:     1,
		Bathrooms:   2,
		Street:      "Main St 12",
		Lat:         "19.4326",
		Lng:         "-99.1332",
	}
}

func (f *fixture) publish(t *testing.T, title string) *domain.Property {
	t.Helper()
	ctx := context.Background()
	property, err := f.uc.Create(ctx, f.seller, validRequest(title))
	require.NoError(t, err)
	require.NoError(t, f.uc.AttachImage(ctx, f.seller, property.ID, "front.png", pngImage))
	published, err := f.uc.GetPublished(ctx, property.ID)
	require.NoError(t, err)
	return published
}

func TestCreate_StartsUnpublished(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	property, err := f.uc.Create(ctx, f.seller, validRequest("Casa Azul"))
	require.NoError(t, err)
	assert.False(t, property.Published)
	assert.True(t, authdomain.IsOwner(f.seller, property.UserID))

	_, err = f.uc.GetPublished(ctx, property.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	bad := validRequest("Bad")
	bad.Category = 99
	_, err = f.uc.Create(ctx, f.seller, bad)
	assert.ErrorIs(t, err, ErrUnknownCategory)

	bad = validRequest("Bad")
	bad.Price = 99
	_, err = f.uc.Create(ctx, f.seller, bad)
	assert.ErrorIs(t, err, ErrUnknownPrice)

	_, err = f.uc.Create(ctx, authdomain.Identity{}, validRequest("Nobody"))
	assert.ErrorIs(t, err, ErrAnonymous)
}

func TestAttachImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	property, err := f.uc.Create(ctx, f.seller, validRequest("Casa Azul"))
	require.NoError(t, err)

	err = f.uc.AttachImage(ctx, f.buyer, property.ID, "front.png", pngImage)
	assert.ErrorIs(t, err, ErrNotOwner)

	err = f.uc.AttachImage(ctx, f.seller, property.ID, "front.gif", pngImage)
	assert.ErrorIs(t, err, storage.ErrUnsupportedImage)

	require.NoError(t, f.uc.AttachImage(ctx, f.seller, property.ID, "front.png", pngImage))

	published, err := f.uc.GetPublished(ctx, property.ID)
	require.NoError(t, err)
	assert.True(t, published.Published)
	assert.True(t, f.images.has(published.Image))

	_, err = f.uc.GetForImage(ctx, f.seller, property.ID)
	assert.ErrorIs(t, err, ErrAlreadyPublished)
}

func TestOwnershipGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	property := f.publish(t, "Casa Azul")

	_, err := f.uc.GetOwned(ctx, f.buyer, property.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = f.uc.Update(ctx, f.buyer, property.ID, validRequest("Hijacked"))
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = f.uc.TogglePublished(ctx, f.buyer, property.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, _, err = f.uc.Messages(ctx, f.buyer, property.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	assert.ErrorIs(t, f.uc.Delete(ctx, f.buyer, property.ID), ErrNotOwner)

	_, err = f.uc.GetOwned(ctx, f.seller, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	unchanged, err := f.uc.GetPublished(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, "Casa Azul", unchanged.Title)
	assert.True(t, f.images.has(unchanged.Image))
}

func TestUpdateAndToggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	property := f.publish(t, "Casa Azul")

	req := validRequest("Casa Verde")
	req.Category = 2
	updated, err := f.uc.Update(ctx, f.seller, property.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Casa Verde", updated.Title)

	reloaded, err := f.uc.GetOwned(ctx, f.seller, property.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, reloaded.CategoryID)
	assert.Equal(t, "Apartment", reloaded.Category.Name)

	published, err := f.uc.TogglePublished(ctx, f.seller, property.ID)
	require.NoError(t, err)
	assert.False(t, published)

	_, err = f.uc.GetPublished(ctx, property.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	published, err = f.uc.TogglePublished(ctx, f.seller, property.ID)
	require.NoError(t, err)
	assert.True(t, published)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	property := f.publish(t, "Casa Azul")
	require.NoError(t, f.uc.SendMessage(ctx, &f.buyer, property.ID, &dto.MessageRequest{Body: "Is it still available?"}))

	require.NoError(t, f.uc.Delete(ctx, f.seller, property.ID))

	_, err := f.uc.GetOwned(ctx, f.seller, property.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, f.images.has(property.Image))
}

func TestSendMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	property := f.publish(t, "Casa Azul")

	err := f.uc.SendMessage(ctx, &f.seller, property.ID, &dto.MessageRequest{Body: "Talking to myself"})
	assert.ErrorIs(t, err, ErrOwnProperty)

	require.NoError(t, f.uc.SendMessage(ctx, &f.buyer, property.ID, &dto.MessageRequest{Body: "Is it still available?"}))
	require.NoError(t, f.uc.SendMessage(ctx, nil, property.ID, &dto.MessageRequest{Body: "Anonymous question here"}))

	err = f.uc.SendMessage(ctx, nil, "missing", &dto.MessageRequest{Body: "Anybody there?"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, messages, err := f.uc.Messages(ctx, f.seller, property.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)

	senders := 0
	for _, m := range messages {
		if m.Sender != nil {
			senders++
			assert.Equal(t, "buyer@example.com", m.Sender.Email)
			assert.Empty(t, m.Sender.Password)
		}
	}
	assert.Equal(t, 1, senders)
}

func TestIsSeller(t *testing.T) {
	f := newFixture(t)
	property := f.publish(t, "Casa Azul")

	assert.True(t, IsSeller(&f.seller, property))
	assert.False(t, IsSeller(&f.buyer, property))
	assert.False(t, IsSeller(nil, property))
}

func TestListOwned_Pagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < PageSize+2; i++ {
		_, err := f.uc.Create(ctx, f.seller, validRequest("Listing"))
		require.NoError(t, err)
	}

	first, err := f.uc.ListOwned(ctx, f.seller, 1)
	require.NoError(t, err)
	assert.Len(t, first.Properties, PageSize)
	assert.Equal(t, 2, first.Pages)
	assert.EqualValues(t, PageSize+2, first.Total)
	assert.Equal(t, []int{1, 2}, first.PageNumbers())
	assert.Equal(t, PageSize, first.Last())

	second, err := f.uc.ListOwned(ctx, f.seller, 2)
	require.NoError(t, err)
	assert.Len(t, second.Properties, 2)
	assert.Equal(t, PageSize+2, second.Last())

	_, err = f.uc.ListOwned(ctx, f.seller, 3)
	assert.ErrorIs(t, err, ErrInvalidPage)
	_, err = f.uc.ListOwned(ctx, f.seller, 0)
	assert.ErrorIs(t, err, ErrInvalidPage)

	empty, err := f.uc.ListOwned(ctx, f.buyer, 1)
	require.NoError(t, err)
	assert.Empty(t, empty.Properties)
	assert.Zero(t, empty.Pages)
}

func TestPublicQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.publish(t, "Casa con jardín")
	apartment := validRequest("Departamento céntrico")
	apartment.Category = 2
	apartment.Description = "Cerca del metro"
	draft, err := f.uc.Create(ctx, f.seller, apartment)
	require.NoError(t, err)

	sections, err := f.uc.Home(ctx)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "House", sections[0].Category.Name)

	results, err := f.uc.Search(ctx, "jardin")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Casa con jardín", results[0].Title)

	results, err = f.uc.Search(ctx, "departamento")
	require.NoError(t, err)
	assert.Empty(t, results, "unpublished listings are not searchable")

	results, err = f.uc.Search(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, results)

	require.NoError(t, f.uc.AttachImage(ctx, f.seller, draft.ID, "flat.png", pngImage))

	category, listings, err := f.uc.ByCategory(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Apartment", category.Name)
	require.Len(t, listings, 1)

	_, _, err = f.uc.ByCategory(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)

	points, err := f.uc.PublishedForMap(ctx)
	require.NoError(t, err)
	require.Len(t, points, 2)
	for _, p := range points {
		assert.Contains(t, p.Image, "https://cdn.example.com/")
		assert.NotEmpty(t, p.Category)
		assert.NotEmpty(t, p.Price)
	}
}
