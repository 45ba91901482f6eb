package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"

	"github.com/google/uuid"
	"github.com/tealeg/xlsx"
)

type ReviewInput struct {
	Name        string
	Description string
}

func (in *ReviewInput) validate() error {
	v := &domain.ValidationError{}
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" {
		v.Add("name", "This field may not be blank.")
	}
	if in.Description == "" {
		v.Add("description", "This field may not be blank.")
	}
	return v.OrNil()
}

func (s *CatalogService) ListReviews(ctx context.Context, productID uint64) ([]domain.Review, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.reviews.ListByProduct(ctx, productID)
}

func (s *CatalogService) GetReview(ctx context.Context, productID, id uint64) (*domain.Review, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	return s.reviews.FindByID(ctx, productID, id)
}

func (s *CatalogService) CreateReview(ctx context.Context, productID uint64, in ReviewInput) (*domain.Review, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	r := &domain.Review{ProductID: productID, Name: in.Name, Description: in.Description}
	if err := s.reviews.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *CatalogService) UpdateReview(ctx context.Context, productID, id uint64, in ReviewInput) (*domain.Review, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	r, err := s.reviews.FindByID(ctx, productID, id)
	if err != nil {
		return nil, err
	}
	r.Name, r.Description = in.Name, in.Description
	if err := s.reviews.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *CatalogService) DeleteReview(ctx context.Context, productID, id uint64) error {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	if _, err := s.reviews.FindByID(ctx, productID, id); err != nil {
		return err
	}
	return s.reviews.Delete(ctx, id)
}

// ImageUpload is one file received from a multipart form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func (s *CatalogService) ListImages(ctx context.Context, productID uint64) ([]domain.ProductImage, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.products.ListImages(ctx, productID)
}

func (s *CatalogService) UploadImage(ctx context.Context, actor domain.Actor, productID uint64, up ImageUpload) (*domain.ProductImage, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if up.Size > domain.MaxImageSize {
		return nil, domain.NewValidationError("image", fmt.Sprintf("File size cannot be larger than %d KB", domain.MaxImageSize/1024))
	}
	if s.images == nil {
		return nil, fmt.Errorf("image storage is not configured: %w", domain.ErrUnavailable)
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	key := fmt.Sprintf("products/%d/%s%s", productID, uuid.NewString(), strings.ToLower(path.Ext(up.Filename)))
	url, err := s.images.Put(ctx, key, up.Body, up.ContentType)
	if err != nil {
		log.Printf("image upload error for product %d: %v", productID, err)
		return nil, fmt.Errorf("upload image: %w", domain.ErrUnavailable)
	}

	img := &domain.ProductImage{ProductID: productID, URL: url, Key: key}
	if err := s.products.AddImage(ctx, img); err != nil {
		s.removeObjects(ctx, []domain.ProductImage{*img})
		return nil, err
	}
	s.cache.Invalidate(ctx, productID)
	return img, nil
}

func (s *CatalogService) DeleteImage(ctx context.Context, actor domain.Actor, productID, imageID uint64) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	img, err := s.products.FindImage(ctx, productID, imageID)
	if err != nil {
		return err
	}
	if err := s.products.DeleteImage(ctx, imageID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, productID)
	s.removeObjects(ctx, []domain.ProductImage{*img})
	return nil
}

// removeObjects drops stored files after their rows are gone. Failures leave an
// orphaned object behind and are only logged.
func (s *CatalogService) removeObjects(ctx context.Context, images []domain.ProductImage) {
	if s.images == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, img := range images {
		if img.Key == "" {
			continue
		}
		if err := s.images.Delete(ctx, img.Key); err != nil {
			log.Printf("image cleanup error for %s: %v", img.Key, err)
		}
	}
}

const exportBatch = 500

var exportHeaders = []string{
	"ID", "Title", "Slug", "Description", "UnitPrice", "PriceWithTax",
	"Inventory", "CollectionID", "LastUpdate",
}

// ExportProducts writes the whole catalog as an xlsx workbook.
func (s *CatalogService) ExportProducts(ctx context.Context, actor domain.Actor, w io.Writer) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetValue(h)
	}

	for offset := 0; ; offset += exportBatch {
		products, _, err := s.products.List(ctx, repository.ProductFilter{Offset: offset, Limit: exportBatch})
		if err != nil {
			return err
		}
		for _, p := range products {
			row := sheet.AddRow()
			row.AddCell().SetValue(p.ID)
			row.AddCell().SetValue(p.Title)
			row.AddCell().SetValue(p.Slug)
			row.AddCell().SetValue(p.Description)
			row.AddCell().SetValue(p.UnitPrice.StringFixed(2))
			row.AddCell().SetValue(p.PriceWithTax().StringFixed(2))
			row.AddCell().SetValue(p.Inventory)
			row.AddCell().SetValue(p.CollectionID)
			row.AddCell().SetValue(p.LastUpdate.Format("2006-01-02 15:04:05"))
		}
		if len(products) < exportBatch {
			break
		}
	}
	return file.Write(w)
}
