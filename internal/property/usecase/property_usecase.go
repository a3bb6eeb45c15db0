package usecase

import (
	"context"
	"log"
	"strings"

	authdomain "propertyhub/internal/auth/domain"
	"propertyhub/internal/property/domain"
	"propertyhub/internal/property/dto"
	"propertyhub/internal/property/repository"
	"propertyhub/pkg/fuzzy"
	"propertyhub/pkg/storage"
)

// homeSectionSize is the number of listings shown per category on the home page
const homeSectionSize = 3

// propertyUsecase implements PropertyUsecase interface
type propertyUsecase struct {
	propertyRepo repository.PropertyRepository
	catalogRepo  repository.CatalogRepository
	messageRepo  repository.MessageRepository
	images       storage.ImageStore
}

// NewPropertyUsecase creates a new instance of propertyUsecase
func NewPropertyUsecase(
	propertyRepo repository.PropertyRepository,
	catalogRepo repository.CatalogRepository,
	messageRepo repository.MessageRepository,
	images storage.ImageStore,
) PropertyUsecase {
	return &propertyUsecase{
		propertyRepo: propertyRepo,
		catalogRepo:  catalogRepo,
		messageRepo:  messageRepo,
		images:       images,
	}
}

func (u *propertyUsecase) ListOwned(ctx context.Context, identity authdomain.Identity, page int) (*OwnedPage, error) {
	userID, ok := identity.UserID()
	if !ok {
		return nil, ErrAnonymous
	}
	if page < 1 {
		return nil, ErrInvalidPage
	}

	offset := (page - 1) * PageSize
	properties, total, err := u.propertyRepo.FindByOwner(ctx, userID, PageSize, offset)
	if err != nil {
		return nil, err
	}

	pages := int((total + PageSize - 1) / PageSize)
	if total > 0 && page > pages {
		return nil, ErrInvalidPage
	}

	return &OwnedPage{
		Properties:  properties,
		CurrentPage: page,
		Pages:       pages,
		Total:       total,
		Offset:      offset,
	}, nil
}

func (u *propertyUsecase) Catalog(ctx context.Context) ([]*domain.Category, []*domain.Price, error) {
	categories, err := u.catalogRepo.Categories(ctx)
	if err != nil {
		return nil, nil, err
	}
	prices, err := u.catalogRepo.Prices(ctx)
	if err != nil {
		return nil, nil, err
	}
	return categories, prices, nil
}

func (u *propertyUsecase) Create(ctx context.Context, identity authdomain.Identity, req *dto.PropertyRequest) (*domain.Property, error) {
	userID, ok := identity.UserID()
	if !ok {
		return nil, ErrAnonymous
	}
	if err := u.checkCatalog(ctx, req); err != nil {
		return nil, err
	}

	property := &domain.Property{UserID: userID}
	applyRequest(property, req)

	if err := u.propertyRepo.Create(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}

func (u *propertyUsecase) GetOwned(ctx context.Context, identity authdomain.Identity, id string) (*domain.Property, error) {
	property, err := u.propertyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, ErrNotFound
	}
	if !authdomain.IsOwner(identity, property.UserID) {
		return nil, ErrNotOwner
	}
	return property, nil
}

func (u *propertyUsecase) GetForImage(ctx context.Context, identity authdomain.Identity, id string) (*domain.Property, error) {
	property, err := u.GetOwned(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if property.Published {
		return nil, ErrAlreadyPublished
	}
	return property, nil
}

func (u *propertyUsecase) AttachImage(ctx context.Context, identity authdomain.Identity, id, filename string, data []byte) error {
	property, err := u.GetForImage(ctx, identity, id)
	if err != nil {
		return err
	}

	contentType, err := storage.ValidateImage(filename, data)
	if err != nil {
		return err
	}

	name := storage.NewObjectName(filename)
	if err := u.images.Save(ctx, name, data, contentType); err != nil {
		return err
	}

	previous := property.Image
	property.Image = name
	property.Published = true
	if err := u.propertyRepo.Update(ctx, property); err != nil {
		u.removeImage(ctx, name)
		return err
	}

	if previous != "" {
		u.removeImage(ctx, previous)
	}
	return nil
}

func (u *propertyUsecase) Update(ctx context.Context, identity authdomain.Identity, id string, req *dto.PropertyRequest) (*domain.Property, error) {
	property, err := u.GetOwned(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if err := u.checkCatalog(ctx, req); err != nil {
		return nil, err
	}

	applyRequest(property, req)
	if err := u.propertyRepo.Update(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}

func (u *propertyUsecase) Delete(ctx context.Context, identity authdomain.Identity, id string) error {
	property, err := u.GetOwned(ctx, identity, id)
	if err != nil {
		return err
	}

	if err := u.propertyRepo.Delete(ctx, property.ID); err != nil {
		return err
	}

	if property.Image != "" {
		u.removeImage(ctx, property.Image)
	}
	return nil
}

func (u *propertyUsecase) TogglePublished(ctx context.Context, identity authdomain.Identity, id string) (bool, error) {
	property, err := u.GetOwned(ctx, identity, id)
	if err != nil {
		return false, err
	}

	property.Published = !property.Published
	if err := u.propertyRepo.Update(ctx, property); err != nil {
		return false, err
	}
	return property.Published, nil
}

func (u *propertyUsecase) Messages(ctx context.Context, identity authdomain.Identity, id string) (*domain.Property, []*domain.Message, error) {
	property, err := u.GetOwned(ctx, identity, id)
	if err != nil {
		return nil, nil, err
	}

	messages, err := u.messageRepo.FindByProperty(ctx, property.ID)
	if err != nil {
		return nil, nil, err
	}
	return property, messages, nil
}

func (u *propertyUsecase) GetPublished(ctx context.Context, id string) (*domain.Property, error) {
	property, err := u.propertyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if property == nil || !property.Published {
		return nil, ErrNotFound
	}
	return property, nil
}

func (u *propertyUsecase) SendMessage(ctx context.Context, identity *authdomain.Identity, id string, req *dto.MessageRequest) error {
	property, err := u.GetPublished(ctx, id)
	if err != nil {
		return err
	}

	message := &domain.Message{
		Body:       strings.TrimSpace(req.Body),
		PropertyID: property.ID,
	}

	if identity != nil {
		if authdomain.IsOwner(*identity, property.UserID) {
			return ErrOwnProperty
		}
		if userID, ok := identity.UserID(); ok {
			message.UserID = &userID
		}
	}

	return u.messageRepo.Create(ctx, message)
}

func (u *propertyUsecase) Home(ctx context.Context) ([]CategorySection, error) {
	categories, err := u.catalogRepo.Categories(ctx)
	if err != nil {
		return nil, err
	}

	sections := make([]CategorySection, 0, len(categories))
	for _, category := range categories {
		properties, err := u.propertyRepo.FindPublished(ctx, category.ID, homeSectionSize)
		if err != nil {
			return nil, err
		}
		if len(properties) == 0 {
			continue
		}
		sections = append(sections, CategorySection{Category: category, Properties: properties})
	}
	return sections, nil
}

func (u *propertyUsecase) ByCategory(ctx context.Context, categoryID uint) (*domain.Category, []*domain.Property, error) {
	category, err := u.catalogRepo.FindCategory(ctx, categoryID)
	if err != nil {
		return nil, nil, err
	}
	if category == nil {
		return nil, nil, ErrNotFound
	}

	properties, err := u.propertyRepo.FindPublished(ctx, categoryID, 0)
	if err != nil {
		return nil, nil, err
	}
	return category, properties, nil
}

func (u *propertyUsecase) Search(ctx context.Context, term string) ([]*domain.Property, error) {
	if strings.TrimSpace(term) == "" {
		return nil, nil
	}

	published, err := u.propertyRepo.FindPublished(ctx, 0, 0)
	if err != nil {
		return nil, err
	}

	var matches []*domain.Property
	for _, property := range published {
		fields := []string{property.Title, property.Description, property.Street}
		if property.Category != nil {
			fields = append(fields, property.Category.Name)
		}
		if fuzzy.MatchAny(term, fields...) {
			matches = append(matches, property)
		}
	}
	return matches, nil
}

func (u *propertyUsecase) PublishedForMap(ctx context.Context) ([]*dto.MapProperty, error) {
	published, err := u.propertyRepo.FindPublished(ctx, 0, 0)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.MapProperty, 0, len(published))
	for _, property := range published {
		item := &dto.MapProperty{
			ID:     property.ID,
			Title:  property.Title,
			Lat:    property.Lat,
			Lng:    property.Lng,
			Street: property.Street,
		}
		if property.Image != "" {
			item.Image = u.images.URL(property.Image)
		}
		if property.Category != nil {
			item.Category = property.Category.Name
		}
		if property.Price != nil {
			item.Price = property.Price.Name
		}
		result = append(result, item)
	}
	return result, nil
}

// IsSeller reports whether the visitor owns the property. Anonymous
// visitors never do.
func IsSeller(identity *authdomain.Identity, property *domain.Property) bool {
	return identity != nil && authdomain.IsOwner(*identity, property.UserID)
}

func (u *propertyUsecase) checkCatalog(ctx context.Context, req *dto.PropertyRequest) error {
	category, err := u.catalogRepo.FindCategory(ctx, req.Category)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrUnknownCategory
	}

	price, err := u.catalogRepo.FindPrice(ctx, req.Price)
	if err != nil {
		return err
	}
	if price == nil {
		return ErrUnknownPrice
	}
	return nil
}

func (u *propertyUsecase) removeImage(ctx context.Context, name string) {
	if err := u.images.Delete(ctx, name); err != nil {
		log.Printf("[PropertyUsecase] Failed to delete image %s: %v", name, err)
	}
}

func applyRequest(property *domain.Property, req *dto.PropertyRequest) {
	property.Title = strings.TrimSpace(req.Title)
	property.Description = strings.TrimSpace(req.Description)
	property.CategoryID = req.Category
	property.PriceID = req.Price
	property.Bedrooms = req.Bedrooms
	property.Parking = req.Parking
	property.Bathrooms = req.Bathrooms
	property.Street = strings.TrimSpace(req.Street)
	property.Lat = req.Lat
	property.Lng = req.Lng
	// Associations loaded earlier would shadow the new ids
	property.Category = nil
	property.Price = nil
}
