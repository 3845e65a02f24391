package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"knotty_backend/internal/cache"
	"knotty_backend/internal/logger"
	"knotty_backend/internal/models"
	"knotty_backend/internal/repositories"
	"knotty_backend/internal/services/dto"
	"knotty_backend/pkg/apperrors"

	"gorm.io/datatypes"
)

const productCacheTTL = 5 * time.Minute

// ProductService serves the catalog. Single-product reads go through the
// cache; admin writes invalidate the affected key.
type ProductService struct {
	products repositories.ProductRepository
	cache    *cache.Cache
}

func NewProductService(products repositories.ProductRepository, c *cache.Cache) *ProductService {
	return &ProductService{
		products: products,
		cache:    c,
	}
}

func productCacheKey(id string) string { return "product:" + id }

func (s *ProductService) GetProduct(ctx context.Context, productID string) (*dto.ProductResponse, error) {
	load := func(ctx context.Context) (*dto.ProductResponse, error) {
		product, err := s.products.FindByID(productID)
		if err != nil {
			return nil, err
		}
		return toProductResponse(product), nil
	}

	var out *dto.ProductResponse
	var err error
	if s.cache != nil {
		out, err = cache.GetOrLoadJSON(s.cache, ctx, productCacheKey(productID), productCacheTTL, load)
	} else {
		out, err = load(ctx)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return out, nil
}

func (s *ProductService) ListProducts(ctx context.Context, criteria *dto.ProductSearchCriteria) (*dto.ProductListResponse, error) {
	page := criteria.Page
	if page < 1 {
		page = 1
	}
	pageSize := criteria.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	products, total, err := s.products.FindWithFilter(repositories.ProductFilter{
		Category: criteria.Category,
		Search:   criteria.Search,
		MinPrice: criteria.MinPrice,
		MaxPrice: criteria.MaxPrice,
		InStock:  criteria.InStock,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *toProductResponse(&products[i]))
	}

	return &dto.ProductListResponse{
		Products: out,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *ProductService) ListCategories(ctx context.Context) ([]string, error) {
	categories, err := s.products.ListCategories()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return categories, nil
}

// Admin operations

func (s *ProductService) CreateProduct(ctx context.Context, req *dto.CreateProductRequest) (*dto.ProductResponse, error) {
	images, err := imagesToJSON(req.Images)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		Color:       req.Color,
		Size:        req.Size,
		Shape:       req.Shape,
		Images:      images,
	}

	if err := s.products.Create(product); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "product created", "product_id", product.ID, "name", product.Name)

	return toProductResponse(product), nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, productID string, req *dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.Stock != nil {
		fields["stock"] = *req.Stock
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.Color != nil {
		fields["color"] = *req.Color
	}
	if req.Size != nil {
		fields["size"] = *req.Size
	}
	if req.Shape != nil {
		fields["shape"] = *req.Shape
	}
	if req.Images != nil {
		images, err := imagesToJSON(*req.Images)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		fields["images"] = images
	}

	if len(fields) > 0 {
		if err := s.products.Update(productID, fields); err != nil {
			if errors.Is(err, repositories.ErrProductNotFound) {
				return nil, apperrors.ErrProductNotFound
			}
			return nil, apperrors.InternalError(err)
		}
		s.invalidate(ctx, productID)
	}

	product, err := s.products.FindByID(productID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return toProductResponse(product), nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, productID string) error {
	if err := s.products.Delete(productID); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return apperrors.ErrProductNotFound
		}
		return apperrors.InternalError(err)
	}

	s.invalidate(ctx, productID)
	logger.CtxInfo(ctx, "product deleted", "product_id", productID)
	return nil
}

func (s *ProductService) invalidate(ctx context.Context, productID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, productCacheKey(productID))
	}
}

func imagesToJSON(images []string) (datatypes.JSON, error) {
	if images == nil {
		images = []string{}
	}
	b, err := json.Marshal(images)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func toProductResponse(p *models.Product) *dto.ProductResponse {
	var images []string
	if len(p.Images) > 0 {
		_ = json.Unmarshal(p.Images, &images)
	}
	if images == nil {
		images = []string{}
	}

	return &dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		Color:       p.Color,
		Size:        p.Size,
		Shape:       p.Shape,
		Images:      images,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
