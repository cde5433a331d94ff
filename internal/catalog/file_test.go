package catalog_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/shopcore/internal/catalog"
	"github.com/dukerupert/shopcore/internal/domain"
	"github.com/dukerupert/shopcore/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileSource(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		src, err := catalog.NewFileSource(catalog.FileSourceConfig{Path: "testdata/catalog.json"})
		require.NoError(t, err)
		assert.Equal(t, 5, src.Len())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := catalog.NewFileSource(catalog.FileSourceConfig{Path: "testdata/nope.json"})
		assert.True(t, domain.IsCode(err, domain.EINTERNAL))
	})

	t.Run("invalid product", func(t *testing.T) {
		_, err := catalog.NewFileSource(catalog.FileSourceConfig{Path: "testdata/invalid.json"})
		assert.True(t, domain.IsCode(err, domain.EINVALID))
	})

	t.Run("duplicate ids", func(t *testing.T) {
		p := domain.Product{ID: 1, Name: "A", Price: domain.MustDecimal("1")}
		_, err := catalog.NewStaticSource([]domain.Product{p, p}, catalog.FileSourceConfig{})
		assert.True(t, domain.IsCode(err, domain.EINVALID))
	})

	t.Run("id collides with page offsets", func(t *testing.T) {
		p := domain.Product{ID: domain.PageIDOffset, Name: "A", Price: domain.MustDecimal("1")}
		_, err := catalog.NewStaticSource([]domain.Product{p}, catalog.FileSourceConfig{})
		assert.True(t, domain.IsCode(err, domain.EINVALID))
	})
}

func TestOpenSource(t *testing.T) {
	docs := storage.NewLocalStorage("testdata")

	src, err := catalog.OpenSource(context.Background(), docs, "catalog.json", catalog.FileSourceConfig{})
	require.NoError(t, err)
	assert.Equal(t, 5, src.Len())

	_, err = catalog.OpenSource(context.Background(), docs, "nope.json", catalog.FileSourceConfig{})
	assert.True(t, domain.IsCode(err, domain.ENOTFOUND))
}

func TestReadSource(t *testing.T) {
	src, err := catalog.ReadSource(strings.NewReader(`[{"id": 7, "name": "Mug", "price": "12.50"}]`), catalog.FileSourceConfig{})
	require.NoError(t, err)
	assert.Equal(t, 1, src.Len())

	_, err = catalog.ReadSource(strings.NewReader(`{"id": 7}`), catalog.FileSourceConfig{})
	assert.True(t, domain.IsCode(err, domain.EINTERNAL))
}

func TestFileSource_FetchProducts(t *testing.T) {
	src, err := catalog.NewFileSource(catalog.FileSourceConfig{Path: "testdata/catalog.json", TotalPages: 3, PageSize: 20})
	require.NoError(t, err)

	first, err := src.FetchProducts(context.Background(), domain.ProductQuery{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(first.Items))
	assert.Equal(t, domain.Pagination{CurrentPage: 1, TotalPages: 3, TotalItems: 15, ItemsPerPage: 20}, first.Pagination)

	second, err := src.FetchProducts(context.Background(), domain.ProductQuery{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, []int{201, 202, 203, 204, 205}, ids(second.Items))
	assert.Equal(t, first.Items[0].Name, second.Items[0].Name)

	_, err = src.FetchProducts(context.Background(), domain.ProductQuery{Page: 4})
	assert.True(t, domain.IsCode(err, domain.EINVALID))
}

func TestFileSource_FetchProduct(t *testing.T) {
	src, err := catalog.NewFileSource(catalog.FileSourceConfig{Path: "testdata/catalog.json"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		id       int
		wantName string
		wantErr  string
	}{
		{name: "first page", id: 2, wantName: "Leather Crossbody Bag"},
		{name: "shifted page", id: 304, wantName: "Yoga Mat"},
		{name: "unknown base id", id: 9, wantErr: domain.ENOTFOUND},
		{name: "page one never shifts", id: 101, wantErr: domain.ENOTFOUND},
		{name: "beyond last page", id: 401, wantErr: domain.ENOTFOUND},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := src.FetchProduct(context.Background(), tt.id)
			if tt.wantErr != "" {
				assert.True(t, domain.IsCode(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, p.ID)
			assert.Equal(t, tt.wantName, p.Name)
		})
	}
}

func TestFileSource_LatencyHonoursCancellation(t *testing.T) {
	src, err := catalog.NewFileSource(catalog.FileSourceConfig{Path: "testdata/catalog.json", Latency: time.Minute})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = src.FetchProducts(ctx, domain.ProductQuery{Page: 1})
	require.Error(t, err)
	assert.True(t, domain.IsRetryable(err))
	assert.ErrorIs(t, err, context.Canceled)
}
