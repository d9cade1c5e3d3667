package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

// Service exposes category and product management operations.
type Service interface {
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	GetCategory(ctx context.Context, id uuid.UUID) (*CategoryDTO, error)
	ListCategories(ctx context.Context, search string) ([]CategoryDTO, error)
	ListCategoryProducts(ctx context.Context, id uuid.UUID) ([]ProductSummaryDTO, error)

	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDetailDTO, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDetailDTO, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDetailDTO, error)
	ListProducts(ctx context.Context, query ProductListQuery) (*ProductListResult, error)
}

// CreateCategoryInput holds the validated payload to create a category.
type CreateCategoryInput struct {
	Name        string
	Description *string
}

// UpdateCategoryInput holds optional mutation values for a category.
type UpdateCategoryInput struct {
	Name        *string
	Description *string
}

// CreateProductInput holds the validated payload to create a product.
// InitialQuantity seeds the on-hand count; every later change goes through
// the ledger engine.
type CreateProductInput struct {
	Name            string
	Description     *string
	SKU             string
	Price           decimal.Decimal
	CostPrice       decimal.Decimal
	InitialQuantity int
	MinQuantity     int
	CategoryID      *uuid.UUID
	ImageKey        *string
}

// UpdateProductInput holds optional mutation values for a product. The
// on-hand count is deliberately absent.
type UpdateProductInput struct {
	Name          *string
	Description   *string
	SKU           *string
	Price         *decimal.Decimal
	CostPrice     *decimal.Decimal
	MinQuantity   *int
	CategoryID    *uuid.UUID
	ClearCategory bool
	ImageKey      *string
}

type service struct {
	repo         *Repository
	dbClient     *db.Client
	mediaBaseURL string
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, dbClient *db.Client, mediaBaseURL string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient, mediaBaseURL: mediaBaseURL}, nil
}

func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	category := &models.Category{
		Name:        name,
		Description: input.Description,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert category")
	}
	return toCategoryDTO(category, 0), nil
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error) {
	category, err := s.loadCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
		}
		category.Name = name
	}
	if input.Description != nil {
		category.Description = input.Description
	}

	if err := s.repo.SaveCategory(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}

	count, err := s.repo.CountProductsInCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCategoryDTO(category, count), nil
}

// DeleteCategory refuses to delete a category that products still reference.
func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.loadCategory(ctx, id); err != nil {
		return err
	}

	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		count, err := repo.CountProductsInCategory(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return pkgerrors.New(pkgerrors.CodeReferentialIntegrity,
				"category still referenced by products").
				WithDetails(map[string]any{"products_count": count})
		}
		return repo.DeleteCategory(ctx, id)
	})
}

func (s *service) GetCategory(ctx context.Context, id uuid.UUID) (*CategoryDTO, error) {
	category, err := s.loadCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountProductsInCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCategoryDTO(category, count), nil
}

func (s *service) ListCategories(ctx context.Context, search string) ([]CategoryDTO, error) {
	rows, err := s.repo.ListCategories(ctx, search)
	if err != nil {
		return nil, err
	}

	dtos := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		count, err := s.repo.CountProductsInCategory(ctx, rows[i].ID)
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, *toCategoryDTO(&rows[i], count))
	}
	return dtos, nil
}

func (s *service) ListCategoryProducts(ctx context.Context, id uuid.UUID) ([]ProductSummaryDTO, error) {
	if _, err := s.loadCategory(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListProductsByCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toSummaries(rows), nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDetailDTO, error) {
	if err := validateProductFields(input.Name, input.SKU, input.Price, input.CostPrice); err != nil {
		return nil, err
	}
	if input.InitialQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial quantity cannot be negative")
	}
	if input.MinQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min quantity cannot be negative")
	}
	if input.CategoryID != nil {
		if _, err := s.loadCategory(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	product := &models.Product{
		Name:            strings.TrimSpace(input.Name),
		Description:     input.Description,
		SKU:             strings.TrimSpace(input.SKU),
		Price:           input.Price,
		CostPrice:       input.CostPrice,
		CurrentQuantity: input.InitialQuantity,
		MinQuantity:     input.MinQuantity,
		CategoryID:      input.CategoryID,
		ImageKey:        input.ImageKey,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "idx_products_sku") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert product")
	}

	return s.GetProduct(ctx, product.ID)
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDetailDTO, error) {
	if _, err := s.loadProduct(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
		}
		fields["name"] = name
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.SKU != nil {
		sku := strings.TrimSpace(*input.SKU)
		if sku == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
		}
		fields["sku"] = sku
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		fields["price"] = *input.Price
	}
	if input.CostPrice != nil {
		if input.CostPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost price cannot be negative")
		}
		fields["cost_price"] = *input.CostPrice
	}
	if input.MinQuantity != nil {
		if *input.MinQuantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "min quantity cannot be negative")
		}
		fields["min_quantity"] = *input.MinQuantity
	}
	switch {
	case input.ClearCategory:
		fields["category_id"] = nil
	case input.CategoryID != nil:
		if _, err := s.loadCategory(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		fields["category_id"] = *input.CategoryID
	}
	if input.ImageKey != nil {
		fields["image_key"] = *input.ImageKey
	}

	if len(fields) > 0 {
		if err := s.repo.UpdateProductFields(ctx, id, fields); err != nil {
			if db.IsUniqueViolation(err, "idx_products_sku") {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku already in use")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
		}
	}

	return s.GetProduct(ctx, id)
}

// DeleteProduct removes the product; its ledger rows cascade with it.
func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.loadProduct(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDetailDTO, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	var categoryProducts int64
	if product.CategoryID != nil {
		categoryProducts, err = s.repo.CountProductsInCategory(ctx, *product.CategoryID)
		if err != nil {
			return nil, err
		}
	}
	return toProductDetailDTO(product, categoryProducts, s.mediaBaseURL), nil
}

func (s *service) ListProducts(ctx context.Context, query ProductListQuery) (*ProductListResult, error) {
	rows, total, err := s.repo.ListProducts(ctx, query)
	if err != nil {
		return nil, err
	}

	page := query.Pagination.Normalize()
	return &ProductListResult{
		Products: s.toSummaries(rows),
		Total:    total,
		Limit:    page.Limit,
		Offset:   page.Offset,
	}, nil
}

func (s *service) toSummaries(rows []models.Product) []ProductSummaryDTO {
	summaries := make([]ProductSummaryDTO, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, toProductSummaryDTO(row, s.mediaBaseURL))
	}
	return summaries
}

func (s *service) loadCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.repo.FindCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, err
	}
	return category, nil
}

func (s *service) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}
	return product, nil
}

func validateProductFields(name, sku string, price, cost decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if strings.TrimSpace(sku) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if cost.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "cost price cannot be negative")
	}
	return nil
}
