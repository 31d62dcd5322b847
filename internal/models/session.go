package models

// TokenPair is the credential pair issued by a successful login.
// Both fields are empty when the backend only marks the session authenticated.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
