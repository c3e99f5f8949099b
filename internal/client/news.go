// ABOUTME: Typed endpoints of the News Portal backend
// ABOUTME: Headlines listing, Google sign-in exchange and current-user lookup

package client

import (
	"context"
	"net/url"
)

// Article is a single headline as normalized by the backend
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
	Image       string `json:"image,omitempty"`
	Source      string `json:"source,omitempty"`
	PublishedAt string `json:"publishedAt"`
}

// HeadlinesParams are the /news/ query parameters; empty fields are omitted
type HeadlinesParams struct {
	Query    string
	Country  string
	Category string
}

// Values encodes the params as a query string
func (p HeadlinesParams) Values() url.Values {
	v := url.Values{}
	if p.Query != "" {
		v.Set("q", p.Query)
	}
	if p.Country != "" {
		v.Set("country", p.Country)
	}
	if p.Category != "" {
		v.Set("category", p.Category)
	}
	return v
}

// HeadlinesResponse represents the /news/ endpoint response
type HeadlinesResponse struct {
	Count    int       `json:"count"`
	Articles []Article `json:"articles"`
}

// Tokens are the backend-issued credentials
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// User represents the signed-in user
type User struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// LoginResponse represents the /auth/google/ endpoint response
type LoginResponse struct {
	Tokens *Tokens `json:"tokens"`
	User   *User   `json:"user"`
}

type googleLoginRequest struct {
	IDToken string `json:"id_token"`
}

// Headlines calls GET /news/
func (c *Client) Headlines(ctx context.Context, p HeadlinesParams) ([]Article, error) {
	resp, err := c.Do(ctx, Get("/news/", p.Values()))
	if err != nil {
		return nil, err
	}

	var hr HeadlinesResponse
	if err := resp.Decode(&hr); err != nil {
		return nil, err
	}
	return hr.Articles, nil
}

// GoogleLogin calls POST /auth/google/ with a Google ID token
func (c *Client) GoogleLogin(ctx context.Context, idToken string) (*LoginResponse, error) {
	resp, err := c.Do(ctx, Post("/auth/google/", googleLoginRequest{IDToken: idToken}))
	if err != nil {
		return nil, err
	}

	var lr LoginResponse
	if err := resp.Decode(&lr); err != nil {
		return nil, err
	}
	return &lr, nil
}

// Me calls GET /me/
func (c *Client) Me(ctx context.Context) (*User, error) {
	resp, err := c.Do(ctx, Get("/me/", nil))
	if err != nil {
		return nil, err
	}

	var u User
	if err := resp.Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}
