package catalog

import (
	"context"
	"fmt"

	"github.com/MarcGrol/coinshop/lib/myerrors"
	"github.com/MarcGrol/coinshop/lib/mylog"
	"github.com/MarcGrol/coinshop/lib/mypublisher"
	"github.com/MarcGrol/coinshop/lib/mystore"
	"github.com/MarcGrol/coinshop/lib/mytime"
)

// ProductDetails is a product as shown to visitors, with its category resolved.
type ProductDetails struct {
	Product
	Category *Category `json:"category,omitempty"`
}

type service struct {
	logger     mylog.Logger
	nower      mytime.Nower
	publisher  mypublisher.Publisher
	products   collection[Product]
	categories collection[Category]
	heroSlides collection[HeroSlide]
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(logger mylog.Logger, nower mytime.Nower, publisher mypublisher.Publisher,
	productStore mystore.Store[Product], categoryStore mystore.Store[Category], heroSlideStore mystore.Store[HeroSlide]) *service {
	return &service{
		logger:    logger,
		nower:     nower,
		publisher: publisher,
		products: collection[Product]{
			name:  "product",
			store: productStore,
			getID: func(p Product) int { return p.ID },
			setID: func(p *Product, id int) { p.ID = id },
		},
		categories: collection[Category]{
			name:  "category",
			store: categoryStore,
			getID: func(c Category) int { return c.ID },
			setID: func(c *Category, id int) { c.ID = id },
		},
		heroSlides: collection[HeroSlide]{
			name:  "hero slide",
			store: heroSlideStore,
			getID: func(h HeroSlide) int { return h.ID },
			setID: func(h *HeroSlide, id int) { h.ID = id },
		},
	}
}

func (s *service) listProducts(c context.Context, categorySlug string, featuredOnly bool) ([]ProductDetails, error) {
	s.logger.Log(c, categorySlug, mylog.SeverityInfo, "List products (category:'%s', featured:%v)", categorySlug, featuredOnly)

	filters := []mystore.Filter{{Field: "IsActive", Compare: "=", Value: true}}
	if categorySlug != "" {
		categories, err := s.categories.store.Query(c, []mystore.Filter{{Field: "Slug", Compare: "=", Value: categorySlug}}, "")
		if err != nil {
			return nil, myerrors.NewInternalError(fmt.Errorf("error fetching category %s: %s", categorySlug, err))
		}
		if len(categories) == 0 {
			return []ProductDetails{}, nil
		}
		filters = append(filters, mystore.Filter{Field: "CategoryID", Compare: "=", Value: categories[0].ID})
	}
	if featuredOnly {
		filters = append(filters, mystore.Filter{Field: "IsFeatured", Compare: "=", Value: true})
	}

	products, err := s.products.store.Query(c, filters, "-CreatedAt")
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error fetching products: %s", err))
	}

	categoriesByID, err := s.categoriesByID(c)
	if err != nil {
		return nil, err
	}

	result := make([]ProductDetails, 0, len(products))
	for _, p := range products {
		result = append(result, withCategory(p, categoriesByID))
	}
	return result, nil
}

// Lookup returns an active product. Inactive and unknown products are both not found.
func (s *service) Lookup(c context.Context, productID int) (ProductDetails, error) {
	product, err := s.products.get(c, productID)
	if err != nil {
		return ProductDetails{}, err
	}
	if !product.IsActive {
		return ProductDetails{}, myerrors.NewNotFoundError(fmt.Errorf("product %d not found", productID))
	}

	categoriesByID, err := s.categoriesByID(c)
	if err != nil {
		return ProductDetails{}, err
	}

	return withCategory(product, categoriesByID), nil
}

func (s *service) categoriesByID(c context.Context) (map[int]Category, error) {
	categories, err := s.categories.list(c)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]Category, len(categories))
	for _, cat := range categories {
		byID[cat.ID] = cat
	}
	return byID, nil
}

func withCategory(p Product, categoriesByID map[int]Category) ProductDetails {
	details := ProductDetails{Product: p}
	if cat, found := categoriesByID[p.CategoryID]; found {
		details.Category = &cat
	}
	return details
}

func (s *service) listActiveCategories(c context.Context) ([]Category, error) {
	categories, err := s.categories.store.Query(c, []mystore.Filter{{Field: "IsActive", Compare: "=", Value: true}}, "Name")
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error fetching categories: %s", err))
	}
	return categories, nil
}

func (s *service) listActiveHeroSlides(c context.Context) ([]HeroSlide, error) {
	slides, err := s.heroSlides.store.Query(c, []mystore.Filter{{Field: "IsActive", Compare: "=", Value: true}}, "SortOrder")
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error fetching hero slides: %s", err))
	}
	return slides, nil
}

func (s *service) createProduct(c context.Context, product Product) (Product, error) {
	if product.Slug == "" {
		product.Slug = Slugify(product.Name)
	}
	err := product.Validate().AsError()
	if err != nil {
		return Product{}, err
	}
	product.CreatedAt = s.nower.Now()
	product.LastModified = nil

	created, err := s.products.create(c, product, s.publishProductChanged)
	if err != nil {
		return Product{}, err
	}

	s.logger.Log(c, created.Slug, mylog.SeverityInfo, "Created product %d (%s)", created.ID, created.Name)

	return created, nil
}

func (s *service) updateProduct(c context.Context, productID int, product Product) (Product, error) {
	if product.Slug == "" {
		product.Slug = Slugify(product.Name)
	}
	err := product.Validate().AsError()
	if err != nil {
		return Product{}, err
	}
	now := s.nower.Now()

	updated, err := s.products.update(c, productID, product, func(existing Product, value Product) Product {
		value.CreatedAt = existing.CreatedAt
		value.LastModified = &now
		return value
	}, s.publishProductChanged)
	if err != nil {
		return Product{}, err
	}

	s.logger.Log(c, updated.Slug, mylog.SeverityInfo, "Updated product %d (%s)", updated.ID, updated.Name)

	return updated, nil
}

func (s *service) deleteProduct(c context.Context, productID int) error {
	return s.products.delete(c, productID, func(c context.Context) error {
		err := s.publisher.Publish(c, TopicName, ProductDeleted{
			ProductID: productID,
			DeletedAt: s.nower.Now(),
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}
		return nil
	})
}

func (s *service) publishProductChanged(c context.Context, p Product) error {
	changedAt := p.CreatedAt
	if p.LastModified != nil {
		changedAt = *p.LastModified
	}
	err := s.publisher.Publish(c, TopicName, ProductChanged{
		ProductID:     p.ID,
		Name:          p.Name,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		IsActive:      p.IsActive,
		ChangedAt:     changedAt,
	})
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
	}
	return nil
}

func (s *service) createCategory(c context.Context, category Category) (Category, error) {
	if category.Slug == "" {
		category.Slug = Slugify(category.Name)
	}
	err := category.Validate().AsError()
	if err != nil {
		return Category{}, err
	}
	return s.categories.create(c, category, nil)
}

func (s *service) updateCategory(c context.Context, categoryID int, category Category) (Category, error) {
	if category.Slug == "" {
		category.Slug = Slugify(category.Name)
	}
	err := category.Validate().AsError()
	if err != nil {
		return Category{}, err
	}
	return s.categories.update(c, categoryID, category, nil, nil)
}

func (s *service) createHeroSlide(c context.Context, slide HeroSlide) (HeroSlide, error) {
	err := slide.Validate().AsError()
	if err != nil {
		return HeroSlide{}, err
	}
	return s.heroSlides.create(c, slide, nil)
}

func (s *service) updateHeroSlide(c context.Context, slideID int, slide HeroSlide) (HeroSlide, error) {
	err := slide.Validate().AsError()
	if err != nil {
		return HeroSlide{}, err
	}
	return s.heroSlides.update(c, slideID, slide, nil, nil)
}
