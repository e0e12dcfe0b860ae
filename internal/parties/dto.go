package parties

// PartyForm carries create/update input for a customer or supplier.
type PartyForm struct {
	Code     string  `json:"code" validate:"required,max=40"`
	Name     string  `json:"name" validate:"required,max=200"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Address  *string `json:"address,omitempty" validate:"omitempty,max=500"`
	IsActive bool    `json:"is_active"`
}

// ListFilters narrows party listings.
type ListFilters struct {
	Kind     Kind
	Search   string
	IsActive *bool
	Page     int
	PerPage  int
}
