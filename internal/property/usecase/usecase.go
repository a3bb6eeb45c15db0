package usecase

import (
	"context"
	"errors"

	authdomain "propertyhub/internal/auth/domain"
	"propertyhub/internal/property/domain"
	"propertyhub/internal/property/dto"
)

// PageSize is the number of listings per page on the owner's dashboard.
const PageSize = 10

var (
	ErrNotFound         = errors.New("property not found")
	ErrNotOwner         = errors.New("property belongs to another user")
	ErrAlreadyPublished = errors.New("property already published")
	ErrOwnProperty      = errors.New("sellers cannot message their own property")
	ErrInvalidPage      = errors.New("invalid page")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrUnknownPrice     = errors.New("unknown price range")
	ErrAnonymous        = errors.New("identity has no user id")
)

// PropertyUsecase defines the interface for listing business logic. Every
// method taking an identity by value requires ownership of the property and
// returns ErrNotOwner otherwise.
type PropertyUsecase interface {
	ListOwned(ctx context.Context, identity authdomain.Identity, page int) (*OwnedPage, error)

	Catalog(ctx context.Context) ([]*domain.Category, []*domain.Price, error)

	// Create stores an unpublished property owned by identity
	Create(ctx context.Context, identity authdomain.Identity, req *dto.PropertyRequest) (*domain.Property, error)

	GetOwned(ctx context.Context, identity authdomain.Identity, id string) (*domain.Property, error)

	// GetForImage returns the property while it still waits for its image
	GetForImage(ctx context.Context, identity authdomain.Identity, id string) (*domain.Property, error)

	// AttachImage stores the image and publishes the property
	AttachImage(ctx context.Context, identity authdomain.Identity, id, filename string, data []byte) error

	Update(ctx context.Context, identity authdomain.Identity, id string, req *dto.PropertyRequest) (*domain.Property, error)

	// Delete removes the property, its messages and its image
	Delete(ctx context.Context, identity authdomain.Identity, id string) error

	// TogglePublished flips the published flag and returns the new value
	TogglePublished(ctx context.Context, identity authdomain.Identity, id string) (bool, error)

	Messages(ctx context.Context, identity authdomain.Identity, id string) (*domain.Property, []*domain.Message, error)

	// GetPublished returns a published property, ErrNotFound otherwise
	GetPublished(ctx context.Context, id string) (*domain.Property, error)

	// SendMessage records an inquiry. identity is nil for anonymous visitors.
	SendMessage(ctx context.Context, identity *authdomain.Identity, id string, req *dto.MessageRequest) error

	Home(ctx context.Context) ([]CategorySection, error)

	ByCategory(ctx context.Context, categoryID uint) (*domain.Category, []*domain.Property, error)

	Search(ctx context.Context, term string) ([]*domain.Property, error)

	PublishedForMap(ctx context.Context) ([]*dto.MapProperty, error)
}

// CategorySection groups the latest listings of a category for the home page
type CategorySection struct {
	Category   *domain.Category
	Properties []*domain.Property
}

// OwnedPage is one page of the owner's listings
type OwnedPage struct {
	Properties  []*domain.Property
	CurrentPage int
	Pages       int
	Total       int64
	Offset      int
}

// Last is the 1-based position of the last listing shown
func (p *OwnedPage) Last() int {
	return p.Offset + len(p.Properties)
}

func (p *OwnedPage) PageNumbers() []int {
	numbers := make([]int, p.Pages)
	for i := range numbers {
		numbers[i] = i + 1
	}
	return numbers
}
