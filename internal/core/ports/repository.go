package ports

import (
	"context"

	"github.com/ewilliams-labs/resonance/internal/core/domain"
)

// TrackRepository persists the catalog and loads it back as a dataset.
//
// LoadDataset must fail with a *domain.SchemaError when the store lacks any
// of the id/name/artist fields or a requested feature column, and must drop
// rows missing a requested feature before returning.
type TrackRepository interface {
	SaveCatalog(ctx context.Context, source string, tracks []domain.Track) error
	LoadDataset(ctx context.Context, features []string) (domain.Dataset, error)
}

// SimilarityQuerier answers single-seed similarity queries. Implementations
// must be safe for concurrent use.
type SimilarityQuerier interface {
	RecommendByID(id string, topK int) ([]domain.Recommendation, error)
}
