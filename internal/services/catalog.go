package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/watchlog/internal/models"
)

var _ Catalog = (*CatalogService)(nil)

// Catalog defines the list and CRUD operations shared by movies and series.
type Catalog interface {
	// Genres returns the read-only genre reference list.
	Genres(ctx context.Context) ([]models.Genre, error)

	// List returns the items of kind, filtered and sorted by the server.
	List(ctx context.Context, kind models.Kind, q models.ListQuery) ([]models.Item, error)

	// Get fetches one item by id.
	Get(ctx context.Context, kind models.Kind, id int) (*models.Item, error)

	// Create adds an item and returns the server's copy.
	Create(ctx context.Context, kind models.Kind, p models.Payload) (*models.Item, error)

	// Update fully replaces an item.
	Update(ctx context.Context, kind models.Kind, id int, p models.Payload) (*models.Item, error)

	// Delete removes an item by id.
	Delete(ctx context.Context, kind models.Kind, id int) error
}

// CatalogService implements [Catalog] over the REST API.
type CatalogService struct {
	client *Client
}

// NewCatalogService creates a [CatalogService] on top of client.
func NewCatalogService(client *Client) *CatalogService {
	return &CatalogService{client: client}
}

func (s *CatalogService) Genres(ctx context.Context) ([]models.Genre, error) {
	var genres []models.Genre
	if err := s.client.DoJSON(ctx, http.MethodGet, "/genres", nil, nil, &genres); err != nil {
		return nil, fmt.Errorf("failed to fetch genres: %w", err)
	}
	return genres, nil
}

func (s *CatalogService) List(ctx context.Context, kind models.Kind, q models.ListQuery) ([]models.Item, error) {
	var items []models.Item
	if err := s.client.DoJSON(ctx, http.MethodGet, kind.Path(), q.Values(), nil, &items); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind.Plural(), err)
	}
	return items, nil
}

func (s *CatalogService) Get(ctx context.Context, kind models.Kind, id int) (*models.Item, error) {
	var item models.Item
	if err := s.client.DoJSON(ctx, http.MethodGet, itemPath(kind, id), nil, nil, &item); err != nil {
		return nil, fmt.Errorf("failed to get %s %d: %w", kind, id, err)
	}
	return &item, nil
}

func (s *CatalogService) Create(ctx context.Context, kind models.Kind, p models.Payload) (*models.Item, error) {
	var item models.Item
	if err := s.client.DoJSON(ctx, http.MethodPost, kind.Path(), nil, p, &item); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", kind, err)
	}
	return &item, nil
}

func (s *CatalogService) Update(ctx context.Context, kind models.Kind, id int, p models.Payload) (*models.Item, error) {
	var item models.Item
	if err := s.client.DoJSON(ctx, http.MethodPut, itemPath(kind, id), nil, p, &item); err != nil {
		return nil, fmt.Errorf("failed to update %s %d: %w", kind, id, err)
	}
	return &item, nil
}

func (s *CatalogService) Delete(ctx context.Context, kind models.Kind, id int) error {
	if err := s.client.DoJSON(ctx, http.MethodDelete, itemPath(kind, id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete %s %d: %w", kind, id, err)
	}
	return nil
}

func itemPath(kind models.Kind, id int) string {
	return fmt.Sprintf("%s/%d", kind.Path(), id)
}
