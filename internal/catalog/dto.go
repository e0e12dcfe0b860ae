package catalog

// ItemForm carries create/update input for a catalog item.
type ItemForm struct {
	Code     string  `json:"code" validate:"required,max=40"`
	Barcode  *string `json:"barcode,omitempty" validate:"omitempty,max=64"`
	Name     string  `json:"name" validate:"required,max=200"`
	Price    float64 `json:"price" validate:"gte=0"`
	IsActive bool    `json:"is_active"`
}

// ListFilters narrows item listings.
type ListFilters struct {
	Search   string
	IsActive *bool
	Page     int
	PerPage  int
}
