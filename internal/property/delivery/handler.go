package delivery

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	authdelivery "propertyhub/internal/auth/delivery"
	authdomain "propertyhub/internal/auth/domain"
	"propertyhub/internal/property/domain"
	"propertyhub/internal/property/dto"
	"propertyhub/internal/property/usecase"
	"propertyhub/internal/web"
	"propertyhub/pkg/storage"

	"github.com/gin-gonic/gin"
)

// DashboardPath lists the signed-in user's properties. Ownership failures
// land here as well, so they look the same as a missing property.
const DashboardPath = "/my-properties"

// PropertyHandler handles the seller's property management pages
type PropertyHandler struct {
	propertyUsecase usecase.PropertyUsecase
}

// NewPropertyHandler creates a new PropertyHandler
func NewPropertyHandler(propertyUsecase usecase.PropertyUsecase) *PropertyHandler {
	return &PropertyHandler{
		propertyUsecase: propertyUsecase,
	}
}

// view adds the values every page needs to data
func view(c *gin.Context, title string, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	data["Page"] = title
	data["Identity"] = authdelivery.IdentityView(c)
	return data
}

func requireIdentity(c *gin.Context) (authdomain.Identity, bool) {
	identity, ok := authdelivery.IdentityFrom(c)
	if !ok {
		c.Redirect(http.StatusFound, authdelivery.LoginPath)
		c.Abort()
	}
	return identity, ok
}

// handleOwnerError maps usecase errors on owner routes to a response
func handleOwnerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrNotFound),
		errors.Is(err, usecase.ErrNotOwner),
		errors.Is(err, usecase.ErrAlreadyPublished),
		errors.Is(err, usecase.ErrAnonymous):
		c.Redirect(http.StatusFound, DashboardPath)
	default:
		log.Printf("[PropertyHandler] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		web.RenderError(c, http.StatusInternalServerError)
	}
}

// MyProperties lists the user's properties
// GET /my-properties?page=1
func (h *PropertyHandler) MyProperties(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		c.Redirect(http.StatusFound, DashboardPath+"?page=1")
		return
	}

	result, err := h.propertyUsecase.ListOwned(c.Request.Context(), identity, page)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidPage) {
			c.Redirect(http.StatusFound, DashboardPath+"?page=1")
			return
		}
		handleOwnerError(c, err)
		return
	}

	web.HTML(c, http.StatusOK, "admin.html", view(c, "My properties", gin.H{
		"Properties":  result.Properties,
		"CurrentPage": result.CurrentPage,
		"Pages":       result.Pages,
		"PageNumbers": result.PageNumbers(),
		"Total":       result.Total,
		"Offset":      result.Offset,
		"Last":        result.Last(),
	}))
}

// CreateForm renders the empty property form
// GET /properties/create
func (h *PropertyHandler) CreateForm(c *gin.Context) {
	h.renderForm(c, http.StatusOK, "Create property", "/properties/create", &dto.PropertyRequest{})
}

// Create stores a new unpublished property
// POST /properties/create
func (h *PropertyHandler) Create(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req dto.PropertyRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderForm(c, http.StatusBadRequest, "Create property", "/properties/create", &req, web.ValidationMessages(err)...)
		return
	}

	property, err := h.propertyUsecase.Create(c.Request.Context(), identity, &req)
	if err != nil {
		if msg, ok := catalogMessage(err); ok {
			h.renderForm(c, http.StatusBadRequest, "Create property", "/properties/create", &req, msg)
			return
		}
		handleOwnerError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/properties/add-image/"+property.ID)
}

// AddImageForm renders the upload form of an unpublished property
// GET /properties/add-image/:id
func (h *PropertyHandler) AddImageForm(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	property, err := h.propertyUsecase.GetForImage(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		handleOwnerError(c, err)
		return
	}

	web.HTML(c, http.StatusOK, "add_image.html", view(c, "Add image: "+property.Title, gin.H{"Property": property}))
}

// AddImage stores the uploaded image and publishes the property
// POST /properties/add-image/:id
func (h *PropertyHandler) AddImage(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	property, err := h.propertyUsecase.GetForImage(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		handleOwnerError(c, err)
		return
	}

	renderUploadError := func(msg string) {
		web.HTML(c, http.StatusBadRequest, "add_image.html", view(c, "Add image: "+property.Title, gin.H{
			"Property": property,
			"Errors":   []string{msg},
		}))
	}

	header, err := c.FormFile("image")
	if err != nil {
		renderUploadError("Select an image to upload")
		return
	}
	if header.Size > storage.MaxImageSize {
		renderUploadError("The image must be 5 MB or smaller")
		return
	}

	file, err := header.Open()
	if err != nil {
		renderUploadError("The image could not be read")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, storage.MaxImageSize+1))
	if err != nil {
		renderUploadError("The image could not be read")
		return
	}

	err = h.propertyUsecase.AttachImage(c.Request.Context(), identity, property.ID, header.Filename, data)
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, DashboardPath)
	case errors.Is(err, storage.ErrUnsupportedImage):
		renderUploadError("Only jpg, jpeg, png and webp images are allowed")
	case errors.Is(err, storage.ErrImageTooLarge):
		renderUploadError("The image must be 5 MB or smaller")
	default:
		handleOwnerError(c, err)
	}
}

// EditForm renders the form filled with the property
// GET /properties/edit/:id
func (h *PropertyHandler) EditForm(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	property, err := h.propertyUsecase.GetOwned(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		handleOwnerError(c, err)
		return
	}

	h.renderForm(c, http.StatusOK, "Edit property: "+property.Title, "/properties/edit/"+property.ID, requestFrom(property))
}

// Edit saves the property form
// POST /properties/edit/:id
func (h *PropertyHandler) Edit(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	id := c.Param("id")

	// Ownership first, so a foreign id never sees the form again
	if _, err := h.propertyUsecase.GetOwned(c.Request.Context(), identity, id); err != nil {
		handleOwnerError(c, err)
		return
	}

	var req dto.PropertyRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderForm(c, http.StatusBadRequest, "Edit property", "/properties/edit/"+id, &req, web.ValidationMessages(err)...)
		return
	}

	if _, err := h.propertyUsecase.Update(c.Request.Context(), identity, id, &req); err != nil {
		if msg, ok := catalogMessage(err); ok {
			h.renderForm(c, http.StatusBadRequest, "Edit property", "/properties/edit/"+id, &req, msg)
			return
		}
		handleOwnerError(c, err)
		return
	}

	c.Redirect(http.StatusFound, DashboardPath)
}

// Delete removes a property
// POST /properties/delete/:id
func (h *PropertyHandler) Delete(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	if err := h.propertyUsecase.Delete(c.Request.Context(), identity, c.Param("id")); err != nil {
		handleOwnerError(c, err)
		return
	}

	c.Redirect(http.StatusFound, DashboardPath)
}

// TogglePublished flips the published flag
// PUT /properties/:id
func (h *PropertyHandler) TogglePublished(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	published, err := h.propertyUsecase.TogglePublished(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		handleOwnerError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToggleResponse{Result: true, Published: published})
}

// Messages lists the inquiries received for a property
// GET /messages/:id
func (h *PropertyHandler) Messages(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	property, messages, err := h.propertyUsecase.Messages(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		handleOwnerError(c, err)
		return
	}

	web.HTML(c, http.StatusOK, "messages.html", view(c, "Messages: "+property.Title, gin.H{
		"Property": property,
		"Messages": messages,
	}))
}

func (h *PropertyHandler) renderForm(c *gin.Context, status int, title, action string, form *dto.PropertyRequest, errs ...string) {
	categories, prices, err := h.propertyUsecase.Catalog(c.Request.Context())
	if err != nil {
		log.Printf("[PropertyHandler] Failed to load catalog: %v", err)
		web.RenderError(c, http.StatusInternalServerError)
		return
	}

	web.HTML(c, status, "property_form.html", view(c, title, gin.H{
		"Categories": categories,
		"Prices":     prices,
		"Form":       form,
		"Action":     action,
		"Errors":     errs,
	}))
}

func catalogMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, usecase.ErrUnknownCategory):
		return "Select a valid category", true
	case errors.Is(err, usecase.ErrUnknownPrice):
		return "Select a valid price range", true
	}
	return "", false
}

func requestFrom(property *domain.Property) *dto.PropertyRequest {
	return &dto.PropertyRequest{
		Title:       property.Title,
		Description: property.Description,
		Category:    property.CategoryID,
		Price:       property.PriceID,
		Bedrooms:    property.Bedrooms,
		Parking:     property.Parking,
		Bathrooms:   property.Bathrooms,
		Street:      property.Street,
		Lat:         property.Lat,
		Lng:         property.Lng,
	}
}
