package products

// DTO is the wire representation of a product.
type DTO struct {
	ID          int64   `json:"id,omitempty"`
	Number      string  `json:"number" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Stock       int     `json:"stock" validate:"gte=0"`
	BarCode     string  `json:"barCode" validate:"required"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	UserID      int64   `json:"userId"`
	SupplierID  *int64  `json:"supplierId,omitempty"`
	Deleted     bool    `json:"deleted"`
}

// ToDTO maps a product to its wire representation.
func ToDTO(p Product) DTO {
	return DTO{
		ID:          p.ID,
		Number:      p.Number,
		Name:        p.Name,
		Stock:       p.Stock,
		BarCode:     p.BarCode,
		Price:       p.Price,
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
		UserID:      p.UserID,
		SupplierID:  p.SupplierID,
		Deleted:     p.Deleted,
	}
}

func toDTOs(items []Product) []DTO {
	out := make([]DTO, 0, len(items))
	for _, p := range items {
		out = append(out, ToDTO(p))
	}
	return out
}
