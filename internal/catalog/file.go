package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dukerupert/shopcore/internal/domain"
	"github.com/dukerupert/shopcore/internal/storage"
)

// Defaults for the file-backed source.
const (
	DefaultTotalPages = 3
	DefaultPageSize   = 20
)

// FileSourceConfig configures a FileSource.
type FileSourceConfig struct {
	// Path is the JSON catalog file read by NewFileSource.
	Path string

	// TotalPages is the number of pages the source reports.
	TotalPages int

	// PageSize is reported as ItemsPerPage.
	PageSize int

	// Latency is waited before each response. Zero disables it.
	Latency time.Duration
}

// FileSource is a domain.CatalogSource backed by a JSON array of products.
// Page 1 returns the file's records. Later pages return the same records
// with ids shifted by page×100, standing in for a paginated backend.
type FileSource struct {
	products []domain.Product
	cfg      FileSourceConfig
}

// NewFileSource reads and validates the catalog file.
func NewFileSource(cfg FileSourceConfig) (*FileSource, error) {
	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "catalog.open", "failed to read catalog file")
	}
	defer f.Close()

	return ReadSource(f, cfg)
}

// OpenSource reads the catalog document stored under key.
func OpenSource(ctx context.Context, docs storage.Storage, key string, cfg FileSourceConfig) (*FileSource, error) {
	rc, err := docs.Get(ctx, key)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return nil, err
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, "catalog.open", "failed to read catalog document")
	}
	defer rc.Close()

	return ReadSource(rc, cfg)
}

// ReadSource decodes a JSON array of products and validates it.
func ReadSource(r io.Reader, cfg FileSourceConfig) (*FileSource, error) {
	var products []domain.Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "catalog.open", "failed to parse catalog file")
	}

	return NewStaticSource(products, cfg)
}

// NewStaticSource serves an in-memory product list.
func NewStaticSource(products []domain.Product, cfg FileSourceConfig) (*FileSource, error) {
	const op = "catalog.open"

	seen := make(map[int]bool, len(products))
	for i, p := range products {
		if err := p.Validate(); err != nil {
			return nil, domain.WrapError(err, domain.EINVALID, op, fmt.Sprintf("invalid product at index %d", i))
		}
		if p.ID <= 0 || p.ID >= domain.PageIDOffset {
			return nil, domain.Invalid(op, fmt.Sprintf("product id %d out of range 1-%d", p.ID, domain.PageIDOffset-1))
		}
		if seen[p.ID] {
			return nil, domain.Invalid(op, fmt.Sprintf("duplicate product id %d", p.ID))
		}
		seen[p.ID] = true
	}

	if cfg.TotalPages <= 0 {
		cfg.TotalPages = DefaultTotalPages
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}

	return &FileSource{products: products, cfg: cfg}, nil
}

// FetchProducts returns the requested page.
func (s *FileSource) FetchProducts(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error) {
	const op = "catalog.fetch_products"

	if err := s.wait(ctx); err != nil {
		return nil, domain.FetchFailed(err, op, "catalog request cancelled")
	}

	page := q.Page
	if page <= 0 {
		page = 1
	}
	if page > s.cfg.TotalPages {
		return nil, domain.Invalid(op, fmt.Sprintf("page %d out of range", page))
	}

	offset := page
	if page == 1 {
		offset = 0
	}
	items := make([]domain.Product, len(s.products))
	for i, p := range s.products {
		items[i] = p.WithPageOffset(offset)
	}

	return &domain.ProductPage{
		Items: items,
		Pagination: domain.Pagination{
			CurrentPage:  page,
			TotalPages:   s.cfg.TotalPages,
			TotalItems:   len(s.products) * s.cfg.TotalPages,
			ItemsPerPage: s.cfg.PageSize,
		},
	}, nil
}

// FetchProduct resolves a product id, including page-shifted ids.
func (s *FileSource) FetchProduct(ctx context.Context, id int) (*domain.Product, error) {
	const op = "catalog.fetch_product"

	if err := s.wait(ctx); err != nil {
		return nil, domain.FetchFailed(err, op, "catalog request cancelled")
	}

	page, base := id/domain.PageIDOffset, id%domain.PageIDOffset
	if page == 1 || page > s.cfg.TotalPages {
		return nil, domain.NotFound(op, "product", fmt.Sprint(id))
	}
	for _, p := range s.products {
		if p.ID == base {
			out := p.WithPageOffset(page)
			return &out, nil
		}
	}
	return nil, domain.NotFound(op, "product", fmt.Sprint(id))
}

// Len returns the number of records per page.
func (s *FileSource) Len() int {
	return len(s.products)
}

func (s *FileSource) wait(ctx context.Context) error {
	if s.cfg.Latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.cfg.Latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
