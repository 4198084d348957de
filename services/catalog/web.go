package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/coinshop/lib/mycontext"
	"github.com/MarcGrol/coinshop/lib/myerrors"
	"github.com/MarcGrol/coinshop/lib/myhttp"
	"github.com/MarcGrol/coinshop/lib/mylog"
	"github.com/MarcGrol/coinshop/lib/mypublisher"
	"github.com/MarcGrol/coinshop/lib/mystore"
	"github.com/MarcGrol/coinshop/lib/mytime"
)

type webService struct {
	logger  mylog.Logger
	admin   myhttp.Credentials
	service *service
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(admin myhttp.Credentials, nower mytime.Nower, publisher mypublisher.Publisher,
	productStore mystore.Store[Product], categoryStore mystore.Store[Category], heroSlideStore mystore.Store[HeroSlide]) *webService {
	logger := mylog.New("catalog")
	return &webService{
		logger:  logger,
		admin:   admin,
		service: newService(logger, nower, publisher, productStore, categoryStore, heroSlideStore),
	}
}

// Lookup is used by the storefront to turn a product id into a cart line.
func (s *webService) Lookup(c context.Context, productID int) (ProductDetails, error) {
	return s.service.Lookup(c, productID)
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/api/products", s.listProductsPage()).Methods("GET")
	router.HandleFunc("/api/products/{id}", s.getProductPage()).Methods("GET")
	router.HandleFunc("/api/categories", s.listCategoriesPage()).Methods("GET")
	router.HandleFunc("/api/hero-slides", s.listHeroSlidesPage()).Methods("GET")

	router.Handle("/api/admin/products", s.adminOnly(s.adminListPage(func(c context.Context) (any, error) {
		return s.service.products.list(c)
	}))).Methods("GET")
	router.Handle("/api/admin/products", s.adminOnly(s.adminCreateProductPage())).Methods("POST")
	router.Handle("/api/admin/products/{id}", s.adminOnly(s.adminGetPage(func(c context.Context, id int) (any, error) {
		return s.service.products.get(c, id)
	}))).Methods("GET")
	router.Handle("/api/admin/products/{id}", s.adminOnly(s.adminUpdateProductPage())).Methods("PUT")
	router.Handle("/api/admin/products/{id}", s.adminOnly(s.adminDeletePage(s.service.deleteProduct))).Methods("DELETE")

	router.Handle("/api/admin/categories", s.adminOnly(s.adminListPage(func(c context.Context) (any, error) {
		return s.service.categories.list(c)
	}))).Methods("GET")
	router.Handle("/api/admin/categories", s.adminOnly(s.adminCreateCategoryPage())).Methods("POST")
	router.Handle("/api/admin/categories/{id}", s.adminOnly(s.adminGetPage(func(c context.Context, id int) (any, error) {
		return s.service.categories.get(c, id)
	}))).Methods("GET")
	router.Handle("/api/admin/categories/{id}", s.adminOnly(s.adminUpdateCategoryPage())).Methods("PUT")
	router.Handle("/api/admin/categories/{id}", s.adminOnly(s.adminDeletePage(func(c context.Context, id int) error {
		return s.service.categories.delete(c, id, nil)
	}))).Methods("DELETE")

	router.Handle("/api/admin/hero-slides", s.adminOnly(s.adminListPage(func(c context.Context) (any, error) {
		return s.service.heroSlides.list(c)
	}))).Methods("GET")
	router.Handle("/api/admin/hero-slides", s.adminOnly(s.adminCreateHeroSlidePage())).Methods("POST")
	router.Handle("/api/admin/hero-slides/{id}", s.adminOnly(s.adminGetPage(func(c context.Context, id int) (any, error) {
		return s.service.heroSlides.get(c, id)
	}))).Methods("GET")
	router.Handle("/api/admin/hero-slides/{id}", s.adminOnly(s.adminUpdateHeroSlidePage())).Methods("PUT")
	router.Handle("/api/admin/hero-slides/{id}", s.adminOnly(s.adminDeletePage(func(c context.Context, id int) error {
		return s.service.heroSlides.delete(c, id, nil)
	}))).Methods("DELETE")
}

func (s *webService) adminOnly(next http.Handler) http.Handler {
	return s.admin.Protect(next)
}

func (s *webService) listProductsPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		featuredOnly := r.URL.Query().Get("featured") == "true"
		products, err := s.service.listProducts(c, r.URL.Query().Get("category"), featuredOnly)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, products)
	}
}

func (s *webService) getProductPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		productID, err := idFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		product, err := s.service.Lookup(c, productID)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, product)
	}
}

func (s *webService) listCategoriesPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		categories, err := s.service.listActiveCategories(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, categories)
	}
}

func (s *webService) listHeroSlidesPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		slides, err := s.service.listActiveHeroSlides(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, slides)
	}
}

func (s *webService) adminListPage(list func(c context.Context) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		result, err := list(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, result)
	}
}

func (s *webService) adminGetPage(get func(c context.Context, id int) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		id, err := idFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		result, err := get(c, id)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, result)
	}
}

func (s *webService) adminDeletePage(del func(c context.Context, id int) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		id, err := idFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		err = del(c, id)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: fmt.Sprintf("Deleted %d", id),
		})
	}
}

func (s *webService) adminCreateProductPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		product := Product{}
		err := myhttp.DecodeJSON(r, &product)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		created, err := s.service.createProduct(c, product)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusCreated, created)
	}
}

func (s *webService) adminUpdateProductPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		id, err := idFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		product := Product{}
		err = myhttp.DecodeJSON(r, &product)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		updated, err := s.service.updateProduct(c, id, product)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, updated)
	}
}

func (s *webService) adminCreateCategoryPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		category := Category{}
		err := myhttp.DecodeJSON(r, &category)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		created, err := s.service.createCategory(c, category)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusCreated, created)
	}
}

func (s *webService) adminUpdateCategoryPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		id, err := idFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		category := Category{}
		err = myhttp.DecodeJSON(r, &category)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		updated, err := s.service.updateCategory(c, id, category)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, updated)
	}
}

func (s *webService) adminCreateHeroSlidePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		slide := HeroSlide{}
		err := myhttp.DecodeJSON(r, &slide)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		created, err := s.service.createHeroSlide(c, slide)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusCreated, created)
	}
}

func (s *webService) adminUpdateHeroSlidePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		id, err := idFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		slide := HeroSlide{}
		err = myhttp.DecodeJSON(r, &slide)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		updated, err := s.service.updateHeroSlide(c, id, slide)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, updated)
	}
}

func idFromRequest(r *http.Request) (int, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, myerrors.NewInvalidInputError(fmt.Errorf("invalid id '%s'", raw))
	}
	return id, nil
}
