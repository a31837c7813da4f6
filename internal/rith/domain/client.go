package domain

import "time"

// Client is a registered OAuth2 application. ClientID is opaque, globally
// unique, and immutable after creation; the secret is stored hashed and only
// returned to the registrant once.
type Client struct {
	ID           string
	ClientID     string
	SecretHash   string
	UserID       string // owning user (the app developer)
	RedirectURIs []string
	Scopes       []string // default scopes granted at authorization
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AllowsRedirectURI reports whether uri is one of the registered redirect
// URIs for the client.
func (c Client) AllowsRedirectURI(uri string) bool {
	for _, registered := range c.RedirectURIs {
		if registered == uri {
			return true
		}
	}
	return false
}
