package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SergeyParamoshkin/blog/internal/model"
)

// Gorm is the PostgreSQL backed store.
type Gorm struct {
	db *gorm.DB
}

// Open connects to PostgreSQL. Query logs go to the given logger.
func Open(dsn string, log *zap.SugaredLogger, debug bool) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         NewLogger(log, debug),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Topic{},
		&model.Article{},
		&model.Review{},
		&model.AuthToken{},
	)
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return err
	}
}

// Users

func (g *Gorm) CreateUser(ctx context.Context, u *model.User) error {
	return translate(g.db.WithContext(ctx).Create(u).Error)
}

func (g *Gorm) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := g.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}

	return &u, nil
}

func (g *Gorm) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := g.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err)
	}

	return &u, nil
}

func (g *Gorm) UserExists(ctx context.Context, username string) (bool, error) {
	var n int64
	err := g.db.WithContext(ctx).Model(&model.User{}).Where("username = ?", username).Count(&n).Error

	return n > 0, translate(err)
}

// SetStaff toggles the admin flag of a user.
func (g *Gorm) SetStaff(ctx context.Context, username string, staff bool) error {
	res := g.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ?", username).
		Update("is_staff", staff)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Tokens

// GetOrCreateToken returns the token of the user, inserting one with key if
// the user has none. Concurrent callers converge on the same row.
func (g *Gorm) GetOrCreateToken(ctx context.Context, userID uint, key string) (*model.AuthToken, error) {
	tok := model.AuthToken{Key: key, UserID: userID}
	err := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Omit(clause.Associations).
		Create(&tok).Error
	if err != nil {
		return nil, translate(err)
	}

	var out model.AuthToken
	if err := g.db.WithContext(ctx).Where("user_id = ?", userID).First(&out).Error; err != nil {
		return nil, translate(err)
	}

	return &out, nil
}

// GetToken returns the token of the user.
func (g *Gorm) GetToken(ctx context.Context, userID uint) (*model.AuthToken, error) {
	var tok model.AuthToken
	if err := g.db.WithContext(ctx).Where("user_id = ?", userID).First(&tok).Error; err != nil {
		return nil, translate(err)
	}

	return &tok, nil
}

func (g *Gorm) UserByToken(ctx context.Context, key string) (*model.User, error) {
	var tok model.AuthToken
	if err := g.db.WithContext(ctx).Preload("User").Where("auth_tokens.key = ?", key).First(&tok).Error; err != nil {
		return nil, translate(err)
	}

	return &tok.User, nil
}

// DeleteToken removes the token of the user and returns its key.
func (g *Gorm) DeleteToken(ctx context.Context, userID uint) (string, error) {
	var tok model.AuthToken
	if err := g.db.WithContext(ctx).Where("user_id = ?", userID).First(&tok).Error; err != nil {
		return "", translate(err)
	}

	res := g.db.WithContext(ctx).Where("auth_tokens.key = ?", tok.Key).Delete(&model.AuthToken{})
	if res.Error != nil {
		return "", translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return "", ErrNotFound
	}

	return tok.Key, nil
}

// Topics

func (g *Gorm) ListTopics(ctx context.Context) ([]model.Topic, error) {
	var topics []model.Topic
	err := g.db.WithContext(ctx).Order("name ASC, id ASC").Find(&topics).Error

	return topics, translate(err)
}

func (g *Gorm) GetTopic(ctx context.Context, id uint) (*model.Topic, error) {
	var t model.Topic
	if err := g.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, translate(err)
	}

	return &t, nil
}

func (g *Gorm) CreateTopic(ctx context.Context, t *model.Topic) error {
	return translate(g.db.WithContext(ctx).Create(t).Error)
}

// Articles

func (g *Gorm) articleScope(ctx context.Context, q ArticleQuery) *gorm.DB {
	tx := g.db.WithContext(ctx).Model(&model.Article{})
	if q.Published != nil {
		tx = tx.Where("is_published = ?", *q.Published)
	}
	if q.TopicID != 0 {
		tx = tx.Where("topic_id = ?", q.TopicID)
	}
	if q.AuthorID != 0 {
		tx = tx.Where("author_id = ?", q.AuthorID)
	}
	for _, term := range q.Terms() {
		like := "%" + escapeLike(term) + "%"
		tx = tx.Where("(title ILIKE ? OR content ILIKE ?)", like, like)
	}

	return tx
}

// ListArticles returns one page of matching articles, newest first, and the
// total number of matches.
func (g *Gorm) ListArticles(ctx context.Context, q ArticleQuery) ([]model.Article, int64, error) {
	var total int64
	if err := g.articleScope(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var articles []model.Article
	tx := g.articleScope(ctx, q).
		Preload("Author").
		Preload("Topic").
		Order("created_at DESC, id DESC")
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	if err := tx.Find(&articles).Error; err != nil {
		return nil, 0, translate(err)
	}

	return articles, total, nil
}

func (g *Gorm) GetArticle(ctx context.Context, id uint) (*model.Article, error) {
	var a model.Article
	if err := g.db.WithContext(ctx).Preload("Author").Preload("Topic").First(&a, id).Error; err != nil {
		return nil, translate(err)
	}

	return &a, nil
}

func (g *Gorm) GetArticleBySlug(ctx context.Context, slug string) (*model.Article, error) {
	var a model.Article
	err := g.db.WithContext(ctx).
		Preload("Author").
		Preload("Topic").
		Where("slug = ?", slug).
		First(&a).Error
	if err != nil {
		return nil, translate(err)
	}

	return &a, nil
}

func (g *Gorm) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int64
	err := g.db.WithContext(ctx).Model(&model.Article{}).Where("slug = ?", slug).Count(&n).Error

	return n > 0, translate(err)
}

// CreateArticle inserts a and reloads it with its author and topic.
func (g *Gorm) CreateArticle(ctx context.Context, a *model.Article) error {
	if err := g.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error; err != nil {
		return translate(err)
	}

	return g.reloadArticle(ctx, a)
}

// UpdateArticle saves every column of a and reloads its relations.
func (g *Gorm) UpdateArticle(ctx context.Context, a *model.Article) error {
	if err := g.db.WithContext(ctx).Omit(clause.Associations).Save(a).Error; err != nil {
		return translate(err)
	}

	return g.reloadArticle(ctx, a)
}

func (g *Gorm) reloadArticle(ctx context.Context, a *model.Article) error {
	fresh, err := g.GetArticle(ctx, a.ID)
	if err != nil {
		return err
	}
	*a = *fresh

	return nil
}

// DeleteArticle removes the article; its reviews go with it through the
// foreign key.
func (g *Gorm) DeleteArticle(ctx context.Context, id uint) error {
	res := g.db.WithContext(ctx).Delete(&model.Article{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Reviews

func (g *Gorm) ListReviews(ctx context.Context, articleID uint) ([]model.Review, error) {
	var reviews []model.Review
	err := g.db.WithContext(ctx).
		Preload("User").
		Preload("Article").
		Where("article_id = ?", articleID).
		Order("created_at ASC, id ASC").
		Find(&reviews).Error

	return reviews, translate(err)
}

func (g *Gorm) GetReview(ctx context.Context, id uint) (*model.Review, error) {
	var r model.Review
	if err := g.db.WithContext(ctx).Preload("User").Preload("Article").First(&r, id).Error; err != nil {
		return nil, translate(err)
	}

	return &r, nil
}

func (g *Gorm) CreateReview(ctx context.Context, r *model.Review) error {
	if err := g.db.WithContext(ctx).Omit(clause.Associations).Create(r).Error; err != nil {
		return translate(err)
	}

	fresh, err := g.GetReview(ctx, r.ID)
	if err != nil {
		return err
	}
	*r = *fresh

	return nil
}

// UpdateReview writes the text of r; no other column is mutable.
func (g *Gorm) UpdateReview(ctx context.Context, r *model.Review) error {
	res := g.db.WithContext(ctx).Model(&model.Review{}).Where("id = ?", r.ID).Update("text", r.Text)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (g *Gorm) DeleteReview(ctx context.Context, id uint) error {
	res := g.db.WithContext(ctx).Delete(&model.Review{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
