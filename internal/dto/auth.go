package dto

// LogoutResponse tells the client where to go after signing out.
type LogoutResponse struct {
	Redirect string `json:"redirect"`
}
