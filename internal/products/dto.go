package product

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/money"
	"github.com/google/uuid"
)

// ProductInput is the validated catalog payload.
type ProductInput struct {
	Name        string
	Description string
	Category    string
	PriceCents  int64
	ImageRef    string
	Stock       int64
}

// ProductDTO is the API representation of a catalog row.
type ProductDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       string    `json:"price"`
	PriceCents  int64     `json:"priceCents"`
	ImageRef    string    `json:"imageRef"`
	Stock       int64     `json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductListResult is one catalog page.
type ProductListResult struct {
	Products []ProductDTO `json:"products"`
	Page     int          `json:"page"`
	Size     int          `json:"size"`
	Total    int64        `json:"total"`
}

func toDTO(p models.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       money.Format(p.PriceCents),
		PriceCents:  p.PriceCents,
		ImageRef:    p.ImageRef,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toDTOs(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}
	return out
}
