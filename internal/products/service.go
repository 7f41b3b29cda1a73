package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
)

// Service exposes the storefront catalog.
type Service interface {
	ListProducts(ctx context.Context, params pagination.Params) (*ProductListResult, error)
	ListByCategory(ctx context.Context, category string, params pagination.Params) (*ProductListResult, error)
	CountProducts(ctx context.Context) (int64, error)
	GetProduct(ctx context.Context, id string) (*ProductDTO, error)
	CreateProduct(ctx context.Context, input ProductInput) (*ProductDTO, error)
	UpsertProduct(ctx context.Context, id string, input ProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id string) (int64, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListProducts(ctx context.Context, params pagination.Params) (*ProductListResult, error) {
	params = params.Normalize()
	rows, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	return &ProductListResult{Products: toDTOs(rows), Page: params.Page, Size: params.Size, Total: total}, nil
}

func (s *service) ListByCategory(ctx context.Context, category string, params pagination.Params) (*ProductListResult, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	params = params.Normalize()
	rows, err := s.repo.ListByCategory(ctx, category, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products by category")
	}
	total, err := s.repo.CountByCategory(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products by category")
	}
	return &ProductListResult{Products: toDTOs(rows), Page: params.Page, Size: params.Size, Total: total}, nil
}

func (s *service) CountProducts(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	return count, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (*ProductDTO, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	row, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	dto := toDTO(*row)
	return &dto, nil
}

func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*ProductDTO, error) {
	row, err := toModel(input)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	dto := toDTO(*created)
	return &dto, nil
}

func (s *service) UpsertProduct(ctx context.Context, id string, input ProductInput) (*ProductDTO, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	row, err := toModel(input)
	if err != nil {
		return nil, err
	}
	row.ID = productID
	saved, err := s.repo.Upsert(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert product")
	}
	dto := toDTO(*saved)
	return &dto, nil
}

func (s *service) DeleteProduct(ctx context.Context, id string) (int64, error) {
	productID, err := parseID(id)
	if err != nil {
		return 0, err
	}
	deleted, err := s.repo.Delete(ctx, productID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return deleted, nil
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be a uuid")
	}
	return id, nil
}

func toModel(input ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}
	return &models.Product{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Category:    category,
		PriceCents:  input.PriceCents,
		ImageRef:    strings.TrimSpace(input.ImageRef),
		Stock:       input.Stock,
	}, nil
}
