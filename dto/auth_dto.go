package dto

type SignupDTO struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`

	Gender   string `json:"gender"`
	AuthType string `json:"authType"`
	City     string `json:"city"`
	Country  string `json:"country"`
}

type LoginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ResetPasswordDTO struct {
	Email string `json:"email" binding:"required,email"`
}

type RecoverPasswordDTO struct {
	Email           string `json:"email" binding:"required,email"`
	ResetPin        string `json:"resetPin" binding:"required,len=6"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}
