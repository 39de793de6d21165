package client

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Envelope is the wrapper used by every API response
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Page is a paginated collection
type Page[T any] struct {
	Content       []T   `json:"content"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

type pageMeta struct {
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// UnmarshalJSON accepts both the flat page shape and the nested
// {"content": [...], "page": {...}} shape newer Spring versions emit.
func (p *Page[T]) UnmarshalJSON(data []byte) error {
	var raw struct {
		Content       []T       `json:"content"`
		Number        int       `json:"number"`
		Size          int       `json:"size"`
		TotalElements int64     `json:"totalElements"`
		TotalPages    int       `json:"totalPages"`
		Page          *pageMeta `json:"page"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.Content = raw.Content
	if p.Content == nil {
		p.Content = []T{}
	}
	p.Number = raw.Number
	p.Size = raw.Size
	p.TotalElements = raw.TotalElements
	p.TotalPages = raw.TotalPages

	if raw.Page != nil {
		p.Number = raw.Page.Number
		p.Size = raw.Page.Size
		p.TotalElements = raw.Page.TotalElements
		p.TotalPages = raw.Page.TotalPages
	}
	return nil
}

// HasNext reports whether a page after this one exists
func (p *Page[T]) HasNext() bool {
	return p.Number+1 < p.TotalPages
}

// HasPrev reports whether a page before this one exists
func (p *Page[T]) HasPrev() bool {
	return p.Number > 0
}

// Clamp limits a requested page index to the pages this result knows about
func (p *Page[T]) Clamp(page int) int {
	if page < 0 || p.TotalPages == 0 {
		return 0
	}
	if page >= p.TotalPages {
		return p.TotalPages - 1
	}
	return page
}

// Timestamp decodes the server's date-times. The API emits zone-less local
// date-times ("2024-05-01T10:20:30.123456") as well as RFC 3339 values.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses any of the layouts the API is known to emit
func ParseTimestamp(value string) (Timestamp, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognised timestamp %q", value)
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// Role is the account role
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is the account returned by the auth and user endpoints
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	FullName   string    `json:"fullName"`
	AvatarURL  *string   `json:"avatarUrl"`
	Role       Role      `json:"role"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  Timestamp `json:"createdAt"`
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// SendOTPRequest asks the server to email a one-time code
type SendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	OTP             string `json:"otp" validate:"required,otp"`
	Username        string `json:"username" validate:"required,min=3,max=30,username"`
	Password        string `json:"password" validate:"required,min=6,max=100"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
	FullName        string `json:"fullName" validate:"required,min=2,max=100"`
}

// ResetPasswordRequest represents the password reset request body
type ResetPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	OTP             string `json:"otp" validate:"required,otp"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=100"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=NewPassword"`
}

// ProfileRequest updates the current user's profile
type ProfileRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30,username"`
	FullName string `json:"fullName" validate:"required,min=2,max=100"`
}

// SpriteSummary is a sprite as it appears in list results
type SpriteSummary struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	Price     float64    `json:"price"`
	ImageURL  string     `json:"imageUrl"`
	CreatedAt Timestamp  `json:"createdAt"`
	DeletedAt *Timestamp `json:"deletedAt,omitempty"`
}

// Sprite is the full sprite record
type Sprite struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	ImageURL      string    `json:"imageUrl"`
	CategoryIDs   []string  `json:"categoryIds"`
	CategoryNames []string  `json:"categoryNames"`
	CreatedBy     string    `json:"createdBy"`
	CreatedAt     Timestamp `json:"createdAt"`
}

// SpriteRequest creates or updates a sprite
type SpriteRequest struct {
	Name        string   `json:"name" validate:"required"`
	CategoryIDs []string `json:"categoryIds" validate:"required,dive,uuid"`
}

// SpriteInfo is the sprite reference embedded in an asset pack
type SpriteInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// AssetPack is a priced bundle of sprites
type AssetPack struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Price         float64      `json:"price"`
	ImageURL      string       `json:"imageUrl"`
	SpriteCount   int          `json:"spriteCount"`
	Sprites       []SpriteInfo `json:"sprites"`
	CategoryIDs   []string     `json:"categoryIds"`
	CategoryNames []string     `json:"categoryNames"`
	CreatedBy     string       `json:"createdBy"`
	CreatedAt     Timestamp    `json:"createdAt"`
}

// AssetPackRequest creates or updates an asset pack
type AssetPackRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Price       float64  `json:"price" validate:"gte=0"`
	SpriteIDs   []string `json:"spriteIds" validate:"dive,uuid"`
}

// Category groups sprites
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   Timestamp `json:"createdAt"`
}

// CategoryRequest creates or updates a category
type CategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}
