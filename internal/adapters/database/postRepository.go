package database

import (
	"context"
	"errors"
	"math"

	"postboard/internal/core/post"
	postPort "postboard/internal/ports/post"

	"gorm.io/gorm"
)

// PostRepositoryDatabase implements postPort.PostRepository with gorm.
type PostRepositoryDatabase struct {
	DB *gorm.DB
}

var _ postPort.PostRepository = (*PostRepositoryDatabase)(nil)

func NewPostRepositoryDatabase(db *gorm.DB) *PostRepositoryDatabase {
	return &PostRepositoryDatabase{DB: db}
}

func (repo *PostRepositoryDatabase) Create(ctx context.Context, p *post.Post) (*post.Post, error) {
	if err := repo.DB.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (repo *PostRepositoryDatabase) FindByID(ctx context.Context, id int) (*post.Post, error) {
	var p post.Post
	err := repo.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, postPort.ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindRange returns posts ordered by id, skipping start rows. A limit of
// zero or less returns everything after start.
func (repo *PostRepositoryDatabase) FindRange(ctx context.Context, start, limit int) ([]*post.Post, error) {
	if limit <= 0 {
		limit = math.MaxInt32
	}
	var posts []*post.Post
	err := repo.DB.WithContext(ctx).Order("id ASC").Offset(start).Limit(limit).Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (repo *PostRepositoryDatabase) Update(ctx context.Context, p *post.Post) (*post.Post, error) {
	// MySQL reports zero affected rows for unchanged values, so existence
	// is checked separately.
	if _, err := repo.FindByID(ctx, p.ID); err != nil {
		return nil, err
	}
	err := repo.DB.WithContext(ctx).Model(&post.Post{}).Where("id = ?", p.ID).Updates(map[string]any{
		"user_id": p.UserID,
		"title":   p.Title,
		"body":    p.Body,
	}).Error
	if err != nil {
		return nil, err
	}
	return repo.FindByID(ctx, p.ID)
}

func (repo *PostRepositoryDatabase) Delete(ctx context.Context, id int) error {
	res := repo.DB.WithContext(ctx).Delete(&post.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return postPort.ErrPostNotFound
	}
	return nil
}

func (repo *PostRepositoryDatabase) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := repo.DB.WithContext(ctx).Model(&post.Post{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
