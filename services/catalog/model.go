package catalog

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/MarcGrol/coinshop/lib/myerrors"
)

type Product struct {
	ID              int        `json:"id"`
	Name            string     `json:"name"`
	Slug            string     `json:"slug"`
	Description     string     `json:"description" datastore:",noindex"`
	Price           float64    `json:"price"`
	StockQuantity   int        `json:"stockQuantity"`
	CategoryID      int        `json:"categoryId"`
	ImageURLs       []string   `json:"imageUrls" datastore:",noindex"`
	PrimaryImageURL string     `json:"primaryImageUrl" datastore:",noindex"`
	Year            int        `json:"year,omitempty"`
	Country         string     `json:"country,omitempty"`
	Metal           string     `json:"metal,omitempty"`
	Grade           string     `json:"grade,omitempty"`
	IsActive        bool       `json:"isActive"`
	IsFeatured      bool       `json:"isFeatured"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastModified    *time.Time `json:"lastModified,omitempty"`
}

func (p Product) Validate() myerrors.FieldErrors {
	errs := myerrors.FieldErrors{}.Required("name", p.Name)
	errs = validateSlug(errs, p.Name, p.Slug)
	if p.Price < 0 {
		errs = append(errs, myerrors.FieldError{Field: "price", Message: "must not be negative"})
	}
	if p.StockQuantity < 0 {
		errs = append(errs, myerrors.FieldError{Field: "stockQuantity", Message: "must not be negative"})
	}
	return errs
}

type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description" datastore:",noindex"`
	ImageURL    string `json:"imageUrl" datastore:",noindex"`
	IsActive    bool   `json:"isActive"`
}

func (c Category) Validate() myerrors.FieldErrors {
	errs := myerrors.FieldErrors{}.Required("name", c.Name)
	return validateSlug(errs, c.Name, c.Slug)
}

type HeroSlide struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle"`
	ImageURL  string `json:"imageUrl" datastore:",noindex"`
	LinkURL   string `json:"linkUrl" datastore:",noindex"`
	SortOrder int    `json:"sortOrder"`
	IsActive  bool   `json:"isActive"`
}

func (h HeroSlide) Validate() myerrors.FieldErrors {
	return myerrors.FieldErrors{}.
		Required("title", h.Title).
		Required("imageUrl", h.ImageURL)
}

// validateSlug expects the slug to be derived already; a name without letters or digits has none.
func validateSlug(errs myerrors.FieldErrors, name string, slug string) myerrors.FieldErrors {
	if name != "" && slug == "" {
		errs = append(errs, myerrors.FieldError{Field: "slug", Message: "must contain a letter or digit"})
	}
	return errs
}

// Slugify turns "1oz Gold Krugerrand (1967)" into "1oz-gold-krugerrand-1967" and "Münze" into "munze".
// Letters without an ascii form are kept as they are.
func Slugify(name string) string {
	// a chain keeps state, so one per call
	stripAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripAccents, name)
	if err != nil {
		folded = name
	}

	sb := strings.Builder{}
	separate := false
	for _, r := range strings.ToLower(folded) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			separate = true
			continue
		}
		if separate && sb.Len() > 0 {
			sb.WriteRune('-')
		}
		sb.WriteRune(r)
		separate = false
	}
	return sb.String()
}
