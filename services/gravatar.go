package services

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Gravatar builds avatar URLs keyed by email address.
type Gravatar struct {
	BaseURL      string
	Size         int
	Rating       string
	Default      string
	ForceDefault bool
}

// NewGravatar returns the settings used for comment authors: 100px, G rated,
// "retro" fallback.
func NewGravatar() Gravatar {
	return Gravatar{
		BaseURL: "https://www.gravatar.com/avatar/",
		Size:    100,
		Rating:  "g",
		Default: "retro",
	}
}

// URL returns the avatar image URL for email.
func (g Gravatar) URL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))

	q := url.Values{}
	q.Set("s", strconv.Itoa(g.Size))
	q.Set("r", g.Rating)
	q.Set("d", g.Default)
	if g.ForceDefault {
		q.Set("f", "y")
	}

	return fmt.Sprintf("%s%s?%s", g.BaseURL, hex.EncodeToString(sum[:]), q.Encode())
}
