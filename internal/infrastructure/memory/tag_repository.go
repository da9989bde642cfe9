package memory

import (
	"context"

	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
	"github.com/oksasatya/go-recipe-api/internal/domain/repository"
)

type TagRepository struct {
	s *Store
}

func (r *TagRepository) List(_ context.Context, userID int64, assignedOnly bool) ([]entity.Tag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return toTags(r.s.tags.list(userID, assignedOnly)), nil
}

func (r *TagRepository) GetByID(_ context.Context, userID, id int64) (*entity.Tag, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n, err := r.s.tags.get(userID, id)
	if err != nil {
		return nil, err
	}
	t := entity.Tag(n)
	return &t, nil
}

func (r *TagRepository) GetOrCreate(_ context.Context, userID int64, name string) (*entity.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t := entity.Tag(r.s.tags.getOrCreate(userID, name))
	return &t, nil
}

func (r *TagRepository) Update(_ context.Context, t *entity.Tag) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.tags.update(namedRow(*t))
}

func (r *TagRepository) Delete(_ context.Context, userID, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.tags.delete(userID, id)
}

var _ repository.TagRepository = (*TagRepository)(nil)
