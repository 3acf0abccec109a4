package models

import "time"

// User is the owning account of workflows. Credits gate manual runs; the
// credential fields are filled by the OAuth collaborator and consumed by the
// storage and messaging handlers.
type User struct {
	ID                 string    `json:"id"      validate:"required"`
	Email              string    `json:"email"   validate:"required,email"`
	Name               string    `json:"name"`
	Tier               string    `json:"tier"`
	Credits            int       `json:"credits"`
	GoogleAccessToken  string    `json:"google_access_token,omitempty"`
	GoogleRefreshToken string    `json:"google_refresh_token,omitempty"`
	NotionAccessToken  string    `json:"notion_access_token,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// HasGoogleCredential reports whether the user holds a Google access token.
// Token expiry is only discovered when the API call is made; handlers treat
// that as a step-local failure.
func (u *User) HasGoogleCredential() bool {
	return u.GoogleAccessToken != ""
}

// HasNotionCredential reports whether the user connected a Notion workspace.
func (u *User) HasNotionCredential() bool {
	return u.NotionAccessToken != ""
}
