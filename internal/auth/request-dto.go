package auth

// ResumeRequest is posted by the storefront after login with the state it was given
type ResumeRequest struct {
	State string `json:"state" validate:"required"`
}
