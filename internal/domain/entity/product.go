package entity

import (
	"errors"
	"strings"
)

var (
	ErrProductName   = errors.New("product name is required")
	ErrNegativePrice = errors.New("price must not be negative")
)

type Product struct {
	id          int64
	name        string
	description string
	price       int64
	imageURL    string
}

func NewProduct(id int64, name, description string, price int64, imageURL string) *Product {
	return &Product{
		id:          id,
		name:        strings.TrimSpace(name),
		description: description,
		price:       price,
		imageURL:    imageURL,
	}
}

func (p *Product) ID() int64 {
	return p.id
}

func (p *Product) Name() string {
	return p.name
}

func (p *Product) Description() string {
	return p.description
}

func (p *Product) Price() int64 {
	return p.price
}

func (p *Product) ImageURL() string {
	return p.imageURL
}

func (p *Product) Validate() error {
	if p.name == "" {
		return ErrProductName
	}
	if p.price < 0 {
		return ErrNegativePrice
	}
	return nil
}
