package sales

import "github.com/almacen-erp/almacen-erp/internal/products"

// DTO is the wire representation of a sale. saleDate and totalPrice are
// server-derived and ignored on input.
type DTO struct {
	ID         int64       `json:"id,omitempty"`
	SaleDate   string      `json:"saleDate,omitempty"`
	TotalPrice float64     `json:"totalPrice"`
	UserID     int64       `json:"userId"`
	ClientID   *int64      `json:"clientId,omitempty"`
	SaleDetail []DetailDTO `json:"saleDetail"`
	Deleted    bool        `json:"deleted"`
}

// DetailDTO is one line item. On input only product.id and amount matter;
// on output the resolved product is embedded in full.
type DetailDTO struct {
	ID      int64        `json:"id,omitempty"`
	Amount  int          `json:"amount"`
	Product products.DTO `json:"product"`
	Deleted bool         `json:"deleted"`
}

func toDTO(s Sale) DTO {
	details := make([]DetailDTO, 0, len(s.Details))
	for _, d := range s.Details {
		dd := DetailDTO{ID: d.ID, Amount: d.Amount, Deleted: d.Deleted}
		if d.Product != nil {
			dd.Product = products.ToDTO(*d.Product)
		} else {
			dd.Product = products.DTO{ID: d.ProductID}
		}
		details = append(details, dd)
	}
	return DTO{
		ID:         s.ID,
		SaleDate:   FormatSaleDate(s.SaleDate),
		TotalPrice: s.TotalPrice,
		UserID:     s.UserID,
		ClientID:   s.ClientID,
		SaleDetail: details,
		Deleted:    s.Deleted,
	}
}

func toDTOs(items []Sale) []DTO {
	out := make([]DTO, 0, len(items))
	for _, s := range items {
		out = append(out, toDTO(s))
	}
	return out
}
