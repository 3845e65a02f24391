package services

import (
	"context"
	"testing"

	"knotty_backend/internal/cache"
	"knotty_backend/internal/services/dto"
	"knotty_backend/pkg/apperrors"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductFixture(t *testing.T) (*ProductService, *fakeProductRepo) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	products := newFakeProductRepo()
	return NewProductService(products, cache.New(mr.Addr(), "", 0)), products
}

func TestCreateAndGetProduct(t *testing.T) {
	s, _ := newProductFixture(t)

	created, err := s.CreateProduct(context.Background(), &dto.CreateProductRequest{
		Name:     "lamp",
		Price:    25.0,
		Stock:    10,
		Category: "home",
		Images:   []string{"https://cdn.example.com/lamp.jpg"},
	})
	require.NoError(t, err)

	got, err := s.GetProduct(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "lamp", got.Name)
	assert.Equal(t, []string{"https://cdn.example.com/lamp.jpg"}, got.Images)
}

func TestGetProductServesFromCache(t *testing.T) {
	s, products := newProductFixture(t)

	created, err := s.CreateProduct(context.Background(), &dto.CreateProductRequest{
		Name: "lamp", Price: 25.0, Stock: 10,
	})
	require.NoError(t, err)

	_, err = s.GetProduct(context.Background(), created.ID)
	require.NoError(t, err)

	// A direct repo change is invisible until the cache is invalidated.
	products.products[created.ID].Name = "changed behind the cache"

	got, err := s.GetProduct(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "lamp", got.Name)
}

func TestUpdateProductInvalidatesCache(t *testing.T) {
	s, _ := newProductFixture(t)

	created, err := s.CreateProduct(context.Background(), &dto.CreateProductRequest{
		Name: "lamp", Price: 25.0, Stock: 10,
	})
	require.NoError(t, err)

	_, err = s.GetProduct(context.Background(), created.ID)
	require.NoError(t, err)

	newPrice := 19.0
	_, err = s.UpdateProduct(context.Background(), created.ID, &dto.UpdateProductRequest{Price: &newPrice})
	require.NoError(t, err)

	got, err := s.GetProduct(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 19.0, got.Price)
}

func TestGetProductUnknownIs404(t *testing.T) {
	s, _ := newProductFixture(t)

	_, err := s.GetProduct(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)
}

func TestDeleteProductUnknownIs404(t *testing.T) {
	s, _ := newProductFixture(t)

	err := s.DeleteProduct(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)
}

func TestListProductsFilters(t *testing.T) {
	s, products := newProductFixture(t)
	seedProduct(t, products, "lamp", 25.0, 10)
	seedProduct(t, products, "mug", 8.5, 0)

	out, err := s.ListProducts(context.Background(), &dto.ProductSearchCriteria{InStock: true})
	require.NoError(t, err)
	require.Equal(t, int64(1), out.Total)
	assert.Equal(t, "lamp", out.Products[0].Name)
}
