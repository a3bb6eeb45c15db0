package delivery

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	authdelivery "propertyhub/internal/auth/delivery"
	"propertyhub/internal/property/domain"
	"propertyhub/internal/property/dto"
	"propertyhub/internal/property/usecase"
	"propertyhub/internal/web"

	"github.com/gin-gonic/gin"
)

const NotFoundPath = "/404"

// PublicHandler serves the pages anyone can browse
type PublicHandler struct {
	propertyUsecase usecase.PropertyUsecase
}

func NewPublicHandler(propertyUsecase usecase.PropertyUsecase) *PublicHandler {
	return &PublicHandler{propertyUsecase: propertyUsecase}
}

func serverError(c *gin.Context, err error) {
	log.Printf("[PublicHandler] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	web.RenderError(c, http.StatusInternalServerError)
}

// Home shows the latest listings of every category
// GET /
func (h *PublicHandler) Home(c *gin.Context) {
	sections, err := h.propertyUsecase.Home(c.Request.Context())
	if err != nil {
		serverError(c, err)
		return
	}
	web.HTML(c, http.StatusOK, "home.html", view(c, "Home", gin.H{"Sections": sections}))
}

// Category lists the published properties of one category
// GET /categories/:id
func (h *PublicHandler) Category(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Redirect(http.StatusFound, NotFoundPath)
		return
	}

	category, properties, err := h.propertyUsecase.ByCategory(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, usecase.ErrNotFound) {
			c.Redirect(http.StatusFound, NotFoundPath)
			return
		}
		serverError(c, err)
		return
	}

	web.HTML(c, http.StatusOK, "listing.html", view(c, category.Name+" for sale", gin.H{"Properties": properties}))
}

// Search matches published properties against a term
// GET /search?term=
func (h *PublicHandler) Search(c *gin.Context) {
	term := strings.TrimSpace(c.Query("term"))
	if term == "" {
		c.Redirect(http.StatusFound, "/")
		return
	}

	properties, err := h.propertyUsecase.Search(c.Request.Context(), term)
	if err != nil {
		serverError(c, err)
		return
	}

	web.HTML(c, http.StatusOK, "listing.html", view(c, "Results for: "+term, gin.H{"Properties": properties}))
}

// NotFound renders the 404 page
// GET /404
func (h *PublicHandler) NotFound(c *gin.Context) {
	web.HTML(c, http.StatusNotFound, "not_found.html", view(c, "Not found", nil))
}

// Show renders a published property
// GET /property/:id
func (h *PublicHandler) Show(c *gin.Context) {
	property, err := h.propertyUsecase.GetPublished(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrNotFound) {
			c.Redirect(http.StatusFound, NotFoundPath)
			return
		}
		serverError(c, err)
		return
	}

	h.renderProperty(c, http.StatusOK, property, "")
}

// SendMessage stores an inquiry for the seller
// POST /property/:id
func (h *PublicHandler) SendMessage(c *gin.Context) {
	ctx := c.Request.Context()
	property, err := h.propertyUsecase.GetPublished(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrNotFound) {
			c.Redirect(http.StatusFound, NotFoundPath)
			return
		}
		serverError(c, err)
		return
	}

	var req dto.MessageRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderProperty(c, http.StatusBadRequest, property, req.Body, web.ValidationMessages(err)...)
		return
	}

	err = h.propertyUsecase.SendMessage(ctx, authdelivery.IdentityView(c), property.ID, &req)
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, "/")
	case errors.Is(err, usecase.ErrOwnProperty):
		h.renderProperty(c, http.StatusForbidden, property, "", "You cannot send messages to your own property")
	case errors.Is(err, usecase.ErrNotFound):
		c.Redirect(http.StatusFound, NotFoundPath)
	default:
		serverError(c, err)
	}
}

// MapProperties feeds the map with every published property
// GET /api/properties
func (h *PublicHandler) MapProperties(c *gin.Context) {
	properties, err := h.propertyUsecase.PublishedForMap(c.Request.Context())
	if err != nil {
		log.Printf("[PublicHandler] Failed to load map properties: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load properties"})
		return
	}
	c.JSON(http.StatusOK, properties)
}

func (h *PublicHandler) renderProperty(c *gin.Context, status int, property *domain.Property, body string, errs ...string) {
	web.HTML(c, status, "property.html", view(c, property.Title, gin.H{
		"Property": property,
		"IsSeller": usecase.IsSeller(authdelivery.IdentityView(c), property),
		"Body":     body,
		"Errors":   errs,
	}))
}
