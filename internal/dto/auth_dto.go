package dto

// RegisterRequest is the signup payload. CompanyID is required for managers
// and ignored for every other role.
type RegisterRequest struct {
	Name             string `json:"name" validate:"required,min=2,max=255"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=8,max=72"`
	Role             string `json:"role" validate:"required,oneof=dean manager student"`
	TelegramUsername string `json:"telegram_username" validate:"omitempty,max=64"`
	CompanyID        string `json:"company_id" validate:"omitempty,uuid4"`
}

// LoginRequest is the credential payload for token issuance.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries a refresh token to be rotated.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse returns a freshly issued token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
