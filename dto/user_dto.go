package dto

type UpdateUserStatusDTO struct {
	Status string `json:"status" binding:"required"`
}
