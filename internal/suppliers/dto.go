package suppliers

// DTO is the wire representation of a supplier.
type DTO struct {
	ID          int64  `json:"id,omitempty"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Company     string `json:"company"`
	Deleted     bool   `json:"deleted"`
}

func toDTO(s Supplier) DTO {
	return DTO{
		ID:          s.ID,
		FirstName:   s.FirstName,
		LastName:    s.LastName,
		PhoneNumber: s.PhoneNumber,
		Email:       s.Email,
		Company:     s.Company,
		Deleted:     s.Deleted,
	}
}

func toDTOs(items []Supplier) []DTO {
	out := make([]DTO, 0, len(items))
	for _, s := range items {
		out = append(out, toDTO(s))
	}
	return out
}
