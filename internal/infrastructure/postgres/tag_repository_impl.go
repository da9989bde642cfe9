package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
	"github.com/oksasatya/go-recipe-api/internal/domain/repository"
)

type TagRepository struct {
	pool *pgxpool.Pool
}

func NewTagRepository(pool *pgxpool.Pool) *TagRepository {
	return &TagRepository{pool: pool}
}

func toTag(n namedRow) entity.Tag {
	return entity.Tag{ID: n.ID, UserID: n.UserID, Name: n.Name}
}

func (r *TagRepository) List(ctx context.Context, userID int64, assignedOnly bool) ([]entity.Tag, error) {
	rows, err := tagsTable.list(ctx, r.pool, userID, assignedOnly)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Tag, 0, len(rows))
	for _, n := range rows {
		out = append(out, toTag(n))
	}
	return out, nil
}

func (r *TagRepository) GetByID(ctx context.Context, userID, id int64) (*entity.Tag, error) {
	n, err := tagsTable.getByID(ctx, r.pool, userID, id)
	if err != nil {
		return nil, err
	}
	t := toTag(n)
	return &t, nil
}

func (r *TagRepository) GetOrCreate(ctx context.Context, userID int64, name string) (*entity.Tag, error) {
	n, err := tagsTable.getOrCreate(ctx, r.pool, userID, name)
	if err != nil {
		return nil, err
	}
	t := toTag(n)
	return &t, nil
}

func (r *TagRepository) Update(ctx context.Context, t *entity.Tag) error {
	return tagsTable.update(ctx, r.pool, namedRow{ID: t.ID, UserID: t.UserID, Name: t.Name})
}

func (r *TagRepository) Delete(ctx context.Context, userID, id int64) error {
	return tagsTable.delete(ctx, r.pool, userID, id)
}

var _ repository.TagRepository = (*TagRepository)(nil)
