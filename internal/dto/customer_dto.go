package dto

type CreateCustomerRequest struct {
	FullName string  `json:"full_name" validate:"required"`
	Document string  `json:"document" validate:"required"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone"`
}

type UpdateCustomerRequest struct {
	FullName string  `json:"full_name" validate:"required"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone"`
}

type CustomerResponse struct {
	ID       string  `json:"id"`
	FullName string  `json:"full_name"`
	Document string  `json:"document"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

type CustomerListResponse struct {
	Items []CustomerResponse `json:"items"`
	Total int64              `json:"total"`
}
