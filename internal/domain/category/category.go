// Package category holds the category (genre) read model.
package category

// Category is a catalog category as stored in the search index.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
