package entity

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5

	customerRole = "Pelanggan"
)

var (
	ErrTestimonialIncomplete = errors.New("name, email, phone and message are required")
	ErrTestimonialRating     = errors.New("rating must be between 1 and 5")
)

type Testimonial struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Text      string `json:"text"`
	Rating    int    `json:"rating"`
	ImageURL  string `json:"img,omitempty"`
	Role      string `json:"role,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// NewTestimonial builds a shopper review. Every contact field is required.
func NewTestimonial(name, email, phone, text string, rating int, now time.Time) (Testimonial, error) {
	name, email, phone, text = strings.TrimSpace(name), strings.TrimSpace(email), strings.TrimSpace(phone), strings.TrimSpace(text)
	if name == "" || email == "" || phone == "" || text == "" {
		return Testimonial{}, ErrTestimonialIncomplete
	}
	if rating < MinRating || rating > MaxRating {
		return Testimonial{}, ErrTestimonialRating
	}
	return Testimonial{
		ID:        fmt.Sprintf("T-%d-%s", now.UnixMilli(), uuid.NewString()[:8]),
		Name:      name,
		Email:     email,
		Phone:     phone,
		Text:      text,
		Rating:    rating,
		Role:      customerRole,
		Timestamp: now.UnixMilli(),
	}, nil
}

type GalleryItem struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"img"`
}

type FAQ struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type InfoSection struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Icon     string `json:"icon"`
	IsActive bool   `json:"isActive"`
}

type StoreContent struct {
	Testimonials []Testimonial `json:"testimonials"`
	Gallery      []GalleryItem `json:"gallery"`
	FAQs         []FAQ         `json:"faqs"`
	Infos        []InfoSection `json:"infos"`
}

// ShopRating is the mean testimonial rating rounded to one decimal.
func (c *StoreContent) ShopRating() float64 {
	if len(c.Testimonials) == 0 {
		return 0
	}
	sum := 0
	for _, t := range c.Testimonials {
		sum += t.Rating
	}
	mean := float64(sum) / float64(len(c.Testimonials))
	return math.Round(mean*10) / 10
}

// AddTestimonial puts t at the front so the newest review is shown first.
func (c *StoreContent) AddTestimonial(t Testimonial) {
	c.Testimonials = append([]Testimonial{t}, c.Testimonials...)
}
