package products

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vasthra-labs/vasthra-backend/pkg/db/models"
	pkgerrors "github.com/vasthra-labs/vasthra-backend/pkg/errors"
)

// ProductSummary is the projection embedded in cart, wishlist and order views.
type ProductSummary struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Fabric   *string         `json:"fabric,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Images   []string        `json:"images,omitempty"`
	Stock    int             `json:"stock"`
}

// Service exposes read-only product lookups.
type Service interface {
	Get(ctx context.Context, productID uuid.UUID) (*ProductSummary, error)
}

type service struct {
	repo *Repository
}

// NewService builds a product lookup service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, productID uuid.UUID) (*ProductSummary, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	summary := Summarize(product)
	return &summary, nil
}

// Summarize projects a product row into its shared summary view.
func Summarize(product *models.Product) ProductSummary {
	return ProductSummary{
		ID:       product.ID,
		Name:     product.Name,
		Category: product.Category,
		Fabric:   product.Fabric,
		Price:    product.Price,
		Images:   product.Images,
		Stock:    product.Stock,
	}
}
