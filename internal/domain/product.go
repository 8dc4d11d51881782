package domain

import "time"

type Product struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	Active            bool       `json:"active"`
	LastBestPrice     *float64   `json:"lastBestPrice,omitempty"`
	LastBestPriceDate *time.Time `json:"lastBestPriceDate,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}
