package users

// DTO is the wire representation of a user. The password travels inbound
// only; the hash never leaves the service.
type DTO struct {
	ID          int64  `json:"id,omitempty"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	UserName    string `json:"userName" validate:"required"`
	Password    string `json:"password,omitempty" validate:"omitempty,min=8"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Type        string `json:"type"`
	Enabled     bool   `json:"enabled"`
	Deleted     bool   `json:"deleted"`
}

func toDTO(u User) DTO {
	return DTO{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		UserName:    u.UserName,
		PhoneNumber: u.PhoneNumber,
		Email:       u.Email,
		Type:        u.Type,
		Enabled:     u.Enabled,
		Deleted:     u.Deleted,
	}
}

func toDTOs(items []User) []DTO {
	out := make([]DTO, 0, len(items))
	for _, u := range items {
		out = append(out, toDTO(u))
	}
	return out
}
