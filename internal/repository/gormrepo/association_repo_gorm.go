package gormrepo

import (
	"context"
	"strings"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Both association tables share the content_type/object_id pair; only the actor column differs.

type taggedItemStore struct {
	db *gorm.DB
}

func NewTaggedItemStore(db *gorm.DB) repository.AssociationStore {
	return &taggedItemStore{db: db}
}

func fromTagged(ti domain.TaggedItem) domain.Association {
	a := domain.Association{
		ID:        ti.ID,
		ActorID:   ti.TagID,
		Target:    domain.EntityRef{Kind: ti.ContentType, ID: ti.ObjectID},
		CreatedAt: ti.CreatedAt,
	}
	if ti.Tag != nil {
		a.Label = ti.Tag.Label
	}
	return a
}

func (s *taggedItemStore) Attach(ctx context.Context, tagID uint64, target domain.EntityRef) (*domain.Association, error) {
	db := conn(ctx, s.db)
	row := domain.TaggedItem{TagID: tagID, ContentType: target.Kind, ObjectID: target.ID}
	if err := db.Omit("Tag").Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return nil, translate(err, nil)
	}
	var stored domain.TaggedItem
	err := db.Preload("Tag").
		Where("tag_id = ? AND content_type = ? AND object_id = ?", tagID, target.Kind, target.ID).
		First(&stored).Error
	if err != nil {
		return nil, translate(err, domain.ErrNotFound)
	}
	a := fromTagged(stored)
	return &a, nil
}

func (s *taggedItemStore) Detach(ctx context.Context, tagID uint64, target domain.EntityRef) error {
	err := conn(ctx, s.db).
		Where("tag_id = ? AND content_type = ? AND object_id = ?", tagID, target.Kind, target.ID).
		Delete(&domain.TaggedItem{}).Error
	return translate(err, nil)
}

func (s *taggedItemStore) list(ctx context.Context, where string, args ...any) ([]domain.Association, error) {
	var rows []domain.TaggedItem
	err := conn(ctx, s.db).Preload("Tag").Where(where, args...).Order("created_at, id").Find(&rows).Error
	if err != nil {
		return nil, translate(err, nil)
	}
	out := make([]domain.Association, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromTagged(r))
	}
	return out, nil
}

func (s *taggedItemStore) ListForEntity(ctx context.Context, target domain.EntityRef) ([]domain.Association, error) {
	return s.list(ctx, "content_type = ? AND object_id = ?", target.Kind, target.ID)
}

func (s *taggedItemStore) ListForActor(ctx context.Context, tagID uint64) ([]domain.Association, error) {
	return s.list(ctx, "tag_id = ?", tagID)
}

func (s *taggedItemStore) CountForEntity(ctx context.Context, target domain.EntityRef) (int64, error) {
	var n int64
	err := conn(ctx, s.db).Model(&domain.TaggedItem{}).
		Where("content_type = ? AND object_id = ?", target.Kind, target.ID).
		Count(&n).Error
	return n, translate(err, nil)
}

func (s *taggedItemStore) DeleteForEntity(ctx context.Context, target domain.EntityRef) error {
	err := conn(ctx, s.db).
		Where("content_type = ? AND object_id = ?", target.Kind, target.ID).
		Delete(&domain.TaggedItem{}).Error
	return translate(err, nil)
}

func (s *taggedItemStore) DeleteForActor(ctx context.Context, tagID uint64) error {
	return translate(conn(ctx, s.db).Where("tag_id = ?", tagID).Delete(&domain.TaggedItem{}).Error, nil)
}

type likedItemStore struct {
	db *gorm.DB
}

func NewLikedItemStore(db *gorm.DB) repository.AssociationStore {
	return &likedItemStore{db: db}
}

func fromLiked(li domain.LikedItem) domain.Association {
	return domain.Association{
		ID:        li.ID,
		ActorID:   li.UserID,
		Target:    domain.EntityRef{Kind: li.ContentType, ID: li.ObjectID},
		CreatedAt: li.CreatedAt,
	}
}

func (s *likedItemStore) Attach(ctx context.Context, userID uint64, target domain.EntityRef) (*domain.Association, error) {
	db := conn(ctx, s.db)
	row := domain.LikedItem{UserID: userID, ContentType: target.Kind, ObjectID: target.ID}
	if err := db.Omit("User").Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return nil, translate(err, nil)
	}
	var stored domain.LikedItem
	err := db.Where("user_id = ? AND content_type = ? AND object_id = ?", userID, target.Kind, target.ID).
		First(&stored).Error
	if err != nil {
		return nil, translate(err, domain.ErrNotFound)
	}
	a := fromLiked(stored)
	return &a, nil
}

func (s *likedItemStore) Detach(ctx context.Context, userID uint64, target domain.EntityRef) error {
	err := conn(ctx, s.db).
		Where("user_id = ? AND content_type = ? AND object_id = ?", userID, target.Kind, target.ID).
		Delete(&domain.LikedItem{}).Error
	return translate(err, nil)
}

func (s *likedItemStore) list(ctx context.Context, where string, args ...any) ([]domain.Association, error) {
	var rows []domain.LikedItem
	if err := conn(ctx, s.db).Where(where, args...).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, translate(err, nil)
	}
	out := make([]domain.Association, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromLiked(r))
	}
	return out, nil
}

func (s *likedItemStore) ListForEntity(ctx context.Context, target domain.EntityRef) ([]domain.Association, error) {
	return s.list(ctx, "content_type = ? AND object_id = ?", target.Kind, target.ID)
}

func (s *likedItemStore) ListForActor(ctx context.Context, userID uint64) ([]domain.Association, error) {
	return s.list(ctx, "user_id = ?", userID)
}

func (s *likedItemStore) CountForEntity(ctx context.Context, target domain.EntityRef) (int64, error) {
	var n int64
	err := conn(ctx, s.db).Model(&domain.LikedItem{}).
		Where("content_type = ? AND object_id = ?", target.Kind, target.ID).
		Count(&n).Error
	return n, translate(err, nil)
}

func (s *likedItemStore) DeleteForEntity(ctx context.Context, target domain.EntityRef) error {
	err := conn(ctx, s.db).
		Where("content_type = ? AND object_id = ?", target.Kind, target.ID).
		Delete(&domain.LikedItem{}).Error
	return translate(err, nil)
}

func (s *likedItemStore) DeleteForActor(ctx context.Context, userID uint64) error {
	return translate(conn(ctx, s.db).Where("user_id = ?", userID).Delete(&domain.LikedItem{}).Error, nil)
}

type tagRepo struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) repository.TagRepository {
	return &tagRepo{db: db}
}

func (r *tagRepo) GetOrCreate(ctx context.Context, label string) (*domain.Tag, error) {
	label = strings.TrimSpace(label)
	db := conn(ctx, r.db)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&domain.Tag{Label: label}).Error; err != nil {
		return nil, translate(err, nil)
	}
	return r.FindByLabel(ctx, label)
}

func (r *tagRepo) FindByLabel(ctx context.Context, label string) (*domain.Tag, error) {
	var t domain.Tag
	if err := conn(ctx, r.db).Where("LOWER(label) = LOWER(?)", label).First(&t).Error; err != nil {
		return nil, translate(err, domain.ErrNotFound)
	}
	return &t, nil
}

func (r *tagRepo) List(ctx context.Context) ([]domain.Tag, error) {
	out := make([]domain.Tag, 0)
	err := conn(ctx, r.db).Order("label").Find(&out).Error
	return out, translate(err, nil)
}
