package models

import (
	"time"

	dbtypes "github.com/nitesh/gamefeed/internal/db"
)

// Source identifies the publication an article came from.
type Source struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

// Article represents a news article as returned by the news-search API.
// The URL is the identity of an article within any result set.
type Article struct {
	Source      Source    `json:"source"`
	Author      *string   `json:"author"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	URL         string    `json:"url"`
	ImageURL    *string   `json:"urlToImage"`
	PublishedAt time.Time `json:"publishedAt"`
	Content     *string   `json:"content"`
}

// Text returns title and description joined, the haystack for relevance matching.
func (a Article) Text() string {
	desc := ""
	if a.Description != nil {
		desc = *a.Description
	}
	return a.Title + " " + desc
}

// DescriptionOr returns the description, or d when the article has none.
func (a Article) DescriptionOr(d string) string {
	if a.Description == nil || *a.Description == "" {
		return d
	}
	return *a.Description
}

// ImageURLs holds the resolution variants of a stock photo.
type ImageURLs struct {
	Raw     string `json:"raw"`
	Full    string `json:"full"`
	Regular string `json:"regular"`
	Small   string `json:"small"`
	Thumb   string `json:"thumb"`
}

// Image is a stock photo returned by the image-search API.
type Image struct {
	ID             string    `json:"id"`
	URLs           ImageURLs `json:"urls"`
	AltDescription *string   `json:"alt_description"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
}

// Headline is a scraped IGN headline, archived in postgres.
type Headline struct {
	ID        string              `db:"id" json:"id,omitempty"`
	Title     string              `db:"title" json:"title"`
	URL       string              `db:"url" json:"url"`
	Topics    dbtypes.StringSlice `db:"topics" json:"topics,omitempty"`
	ScrapedAt time.Time           `db:"scraped_at" json:"scraped_at,omitempty"`
}
