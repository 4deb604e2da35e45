package dto

type CreateSupplierRequest struct {
	LegalName string  `json:"legal_name" validate:"required"`
	TaxID     string  `json:"tax_id" validate:"required"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

type UpdateSupplierRequest struct {
	LegalName string  `json:"legal_name" validate:"required"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

type SupplierResponse struct {
	ID        string  `json:"id"`
	LegalName string  `json:"legal_name"`
	TaxID     string  `json:"tax_id"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
}

type SupplierListResponse struct {
	Items []SupplierResponse `json:"items"`
	Total int64              `json:"total"`
}
