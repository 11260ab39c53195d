package database

import (
	"github.com/rpupo63/blog-backend/models"
	"gorm.io/gorm"
)

type BlogPostRepo struct {
	db *gorm.DB
}

func NewBlogPostRepo(db *gorm.DB) *BlogPostRepo {
	return &BlogPostRepo{db}
}

// FindAll returns all blog posts in insertion order
func (r *BlogPostRepo) FindAll() ([]*models.BlogPost, error) {
	var blogPosts []*models.BlogPost
	err := r.db.Order("id").Find(&blogPosts).Error
	return blogPosts, err
}

// FindByID returns a blog post by its ID
func (r *BlogPostRepo) FindByID(id uint) (*models.BlogPost, error) {
	var blogPost models.BlogPost
	if err := r.db.First(&blogPost, id).Error; err != nil {
		return nil, err
	}
	return &blogPost, nil
}

// FindByIDWithComments returns a blog post with its comments, oldest first,
// each carrying its author.
func (r *BlogPostRepo) FindByIDWithComments(id uint) (*models.BlogPost, error) {
	var blogPost models.BlogPost
	err := r.db.
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Comments.Author").
		First(&blogPost, id).Error
	if err != nil {
		return nil, err
	}
	return &blogPost, nil
}

// Add inserts a new blog post into the database
func (r *BlogPostRepo) Add(blogPost *models.BlogPost) error {
	return r.db.Omit("Comments", "AuthorUser").Create(blogPost).Error
}

// Update writes every column of an existing blog post. A post that no longer
// exists is reported as gorm.ErrRecordNotFound and is never re-created.
func (r *BlogPostRepo) Update(blogPost *models.BlogPost) error {
	result := r.db.Model(blogPost).Select("*").Omit("Comments", "AuthorUser").Updates(blogPost)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a blog post and its comments by id
func (r *BlogPostRepo) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.BlogPost{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
