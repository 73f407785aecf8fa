package dto

type CreateDonationDTO struct {
	Name   string  `json:"name" binding:"required"`
	Email  string  `json:"email" binding:"required,email"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
	TxHash string  `json:"txHash"`
}
