package memory

import (
	"context"
	"sort"
	"strings"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"
)

// assocTable adapts one of the two association tables to a common row shape.
type assocTable struct {
	list   func(t *tables) []domain.Association
	insert func(t *tables, actorID uint64, target domain.EntityRef) domain.Association
	remove func(t *tables, id uint64)
}

type assocStore struct {
	db  *DB
	tbl assocTable
}

var _ repository.AssociationStore = (*assocStore)(nil)

func (s *assocStore) Attach(ctx context.Context, actorID uint64, target domain.EntityRef) (*domain.Association, error) {
	var out domain.Association
	err := s.db.write(ctx, func(t *tables) error {
		for _, a := range s.tbl.list(t) {
			if a.ActorID == actorID && a.Target == target {
				out = a
				return nil
			}
		}
		out = s.tbl.insert(t, actorID, target)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *assocStore) Detach(ctx context.Context, actorID uint64, target domain.EntityRef) error {
	return s.db.write(ctx, func(t *tables) error {
		for _, a := range s.tbl.list(t) {
			if a.ActorID == actorID && a.Target == target {
				s.tbl.remove(t, a.ID)
			}
		}
		return nil
	})
}

func (s *assocStore) ListForEntity(ctx context.Context, target domain.EntityRef) ([]domain.Association, error) {
	return s.filter(ctx, func(a domain.Association) bool { return a.Target == target })
}

func (s *assocStore) ListForActor(ctx context.Context, actorID uint64) ([]domain.Association, error) {
	return s.filter(ctx, func(a domain.Association) bool { return a.ActorID == actorID })
}

func (s *assocStore) CountForEntity(ctx context.Context, target domain.EntityRef) (int64, error) {
	list, err := s.ListForEntity(ctx, target)
	return int64(len(list)), err
}

func (s *assocStore) DeleteForEntity(ctx context.Context, target domain.EntityRef) error {
	return s.db.write(ctx, func(t *tables) error {
		for _, a := range s.tbl.list(t) {
			if a.Target == target {
				s.tbl.remove(t, a.ID)
			}
		}
		return nil
	})
}

func (s *assocStore) DeleteForActor(ctx context.Context, actorID uint64) error {
	return s.db.write(ctx, func(t *tables) error {
		for _, a := range s.tbl.list(t) {
			if a.ActorID == actorID {
				s.tbl.remove(t, a.ID)
			}
		}
		return nil
	})
}

func (s *assocStore) filter(ctx context.Context, keep func(domain.Association) bool) ([]domain.Association, error) {
	out := make([]domain.Association, 0)
	err := s.db.read(ctx, func(t *tables) error {
		for _, a := range s.tbl.list(t) {
			if keep(a) {
				out = append(out, a)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, err
}

func newTaggedStore(db *DB) *assocStore {
	return &assocStore{db: db, tbl: assocTable{
		list: func(t *tables) []domain.Association {
			out := make([]domain.Association, 0, len(t.tagged))
			for _, ti := range t.tagged {
				out = append(out, domain.Association{
					ID:        ti.ID,
					ActorID:   ti.TagID,
					Label:     t.tags[ti.TagID].Label,
					Target:    domain.EntityRef{Kind: ti.ContentType, ID: ti.ObjectID},
					CreatedAt: ti.CreatedAt,
				})
			}
			return out
		},
		insert: func(t *tables, tagID uint64, target domain.EntityRef) domain.Association {
			ti := domain.TaggedItem{ID: t.next("tagged_items"), TagID: tagID, ContentType: target.Kind, ObjectID: target.ID, CreatedAt: now()}
			t.tagged[ti.ID] = ti
			return domain.Association{ID: ti.ID, ActorID: tagID, Label: t.tags[tagID].Label, Target: target, CreatedAt: ti.CreatedAt}
		},
		remove: func(t *tables, id uint64) { delete(t.tagged, id) },
	}}
}

func newLikedStore(db *DB) *assocStore {
	return &assocStore{db: db, tbl: assocTable{
		list: func(t *tables) []domain.Association {
			out := make([]domain.Association, 0, len(t.liked))
			for _, li := range t.liked {
				out = append(out, domain.Association{
					ID:        li.ID,
					ActorID:   li.UserID,
					Target:    domain.EntityRef{Kind: li.ContentType, ID: li.ObjectID},
					CreatedAt: li.CreatedAt,
				})
			}
			return out
		},
		insert: func(t *tables, userID uint64, target domain.EntityRef) domain.Association {
			li := domain.LikedItem{ID: t.next("liked_items"), UserID: userID, ContentType: target.Kind, ObjectID: target.ID, CreatedAt: now()}
			t.liked[li.ID] = li
			return domain.Association{ID: li.ID, ActorID: userID, Target: target, CreatedAt: li.CreatedAt}
		},
		remove: func(t *tables, id uint64) { delete(t.liked, id) },
	}}
}

type tagRepo struct{ db *DB }

var _ repository.TagRepository = (*tagRepo)(nil)

func (r *tagRepo) GetOrCreate(ctx context.Context, label string) (*domain.Tag, error) {
	var out domain.Tag
	err := r.db.write(ctx, func(t *tables) error {
		for _, tag := range t.tags {
			if strings.EqualFold(tag.Label, label) {
				out = tag
				return nil
			}
		}
		out = domain.Tag{ID: t.next("tags"), Label: label}
		t.tags[out.ID] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *tagRepo) FindByLabel(ctx context.Context, label string) (*domain.Tag, error) {
	var out *domain.Tag
	err := r.db.read(ctx, func(t *tables) error {
		for _, tag := range t.tags {
			if strings.EqualFold(tag.Label, label) {
				out = &tag
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

func (r *tagRepo) List(ctx context.Context) ([]domain.Tag, error) {
	out := make([]domain.Tag, 0)
	err := r.db.read(ctx, func(t *tables) error {
		for _, tag := range t.tags {
			out = append(out, tag)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, err
}
