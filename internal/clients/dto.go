package clients

// DTO is the wire representation of a client.
type DTO struct {
	ID        int64  `json:"id,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Dni       string `json:"dni" validate:"required"`
	Deleted   bool   `json:"deleted"`
}

func toDTO(c Client) DTO {
	return DTO{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Dni:       c.Dni,
		Deleted:   c.Deleted,
	}
}

func toDTOs(items []Client) []DTO {
	out := make([]DTO, 0, len(items))
	for _, c := range items {
		out = append(out, toDTO(c))
	}
	return out
}
