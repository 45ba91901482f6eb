package http

import (
	"bytes"
	"net/http"

	"storefront-service/internal/domain"
	"storefront-service/internal/services"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) ListProducts(c *gin.Context) {
	var req ProductQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		writeError(c, bindError(err))
		return
	}
	q, err := req.query()
	if err != nil {
		writeError(c, err)
		return
	}
	page, err := h.catalog.ListProducts(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Page[ProductResponse]{Count: page.Count, Results: mapAll(page.Results, toProduct)})
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	p, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProduct(*p))
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.catalog.CreateProduct(c.Request.Context(), actorFrom(c), req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProduct(*p))
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.catalog.UpdateProduct(c.Request.Context(), actorFrom(c), id, req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProduct(*p))
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), actorFrom(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ExportProducts(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.catalog.ExportProducts(c.Request.Context(), actorFrom(c), &buf); err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=products.xlsx")
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *Handler) ListCollections(c *gin.Context) {
	cols, err := h.catalog.ListCollections(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(cols, toCollection))
}

func (h *Handler) GetCollection(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	col, err := h.catalog.GetCollection(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCollection(*col))
}

func (h *Handler) CreateCollection(c *gin.Context) {
	var req CollectionRequest
	if !bindJSON(c, &req) {
		return
	}
	col, err := h.catalog.CreateCollection(c.Request.Context(), actorFrom(c), services.CollectionInput{
		Title:             req.Title,
		FeaturedProductID: req.FeaturedProductID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCollection(*col))
}

func (h *Handler) UpdateCollection(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req CollectionRequest
	if !bindJSON(c, &req) {
		return
	}
	col, err := h.catalog.UpdateCollection(c.Request.Context(), actorFrom(c), id, services.CollectionInput{
		Title:             req.Title,
		FeaturedProductID: req.FeaturedProductID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCollection(*col))
}

func (h *Handler) DeleteCollection(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteCollection(c.Request.Context(), actorFrom(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListReviews(c *gin.Context) {
	pid, ok := idParam(c, "id")
	if !ok {
		return
	}
	reviews, err := h.catalog.ListReviews(c.Request.Context(), pid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(reviews, toReview))
}

func (h *Handler) GetReview(c *gin.Context) {
	pid, ok := idParam(c, "id")
	if !ok {
		return
	}
	id, ok := idParam(c, "review_id")
	if !ok {
		return
	}
	r, err := h.catalog.GetReview(c.Request.Context(), pid, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReview(*r))
}

func (h *Handler) CreateReview(c *gin.Context) {
	pid, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req ReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.catalog.CreateReview(c.Request.Context(), pid, services.ReviewInput{Name: req.Name, Description: req.Description})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toReview(*r))
}

func (h *Handler) UpdateReview(c *gin.Context) {
	pid, ok := idParam(c, "id")
	if !ok {
		return
	}
	id, ok := idParam(c, "review_id")
	if !ok {
		return
	}
	var req ReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.catalog.UpdateReview(c.Request.Context(), pid, id, services.ReviewInput{Name: req.Name, Description: req.Description})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReview(*r))
}

func (h *Handler) DeleteReview(c *gin.Context) {
	pid, ok := idParam(c, "id")
	if !ok {
		return
	}
	id, ok := idParam(c, "review_id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteReview(c.Request.Context(), pid, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListImages(c *gin.Context) {
	pid, ok := idParam(c, "id")
	if !ok {
		return
	}
	images, err := h.catalog.ListImages(c.Request.Context(), pid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(images, toImage))
}

func (h *Handler) UploadImage(c *gin.Context) {
	pid, ok := idParam(c, "id")
	if !ok {
		return
	}
	header, err := c.FormFile("image")
	if err != nil {
		writeError(c, domain.NewValidationError("image", "No file was submitted."))
		return
	}
	f, err := header.Open()
	if err != nil {
		writeError(c, domain.NewValidationError("image", "The submitted file could not be read."))
		return
	}
	defer f.Close()

	img, err := h.catalog.UploadImage(c.Request.Context(), actorFrom(c), pid, services.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        f,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toImage(*img))
}

func (h *Handler) DeleteImage(c *gin.Context) {
	pid, ok := idParam(c, "id")
	if !ok {
		return
	}
	id, ok := idParam(c, "image_id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteImage(c.Request.Context(), actorFrom(c), pid, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
