package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SergeyParamoshkin/blog/internal/model"
)

// Memory keeps every table in process. Returned values are copies, so
// callers can mutate them freely until they write them back.
type Memory struct {
	mu sync.RWMutex

	users    map[uint]*model.User
	topics   map[uint]*model.Topic
	articles map[uint]*model.Article
	reviews  map[uint]*model.Review
	tokens   map[string]*model.AuthToken

	lastID uint
	now    func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		users:    map[uint]*model.User{},
		topics:   map[uint]*model.Topic{},
		articles: map[uint]*model.Article{},
		reviews:  map[uint]*model.Review{},
		tokens:   map[string]*model.AuthToken{},
		now:      time.Now,
	}
}

// nextID hands out ids from one sequence shared by all tables.
func (m *Memory) nextID() uint {
	m.lastID++

	return m.lastID
}

// Users

func (m *Memory) CreateUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Username == u.Username {
			return ErrConflict
		}
	}

	u.ID = m.nextID()
	u.DateJoined = m.now()
	c := *u
	m.users[u.ID] = &c

	return nil
}

func (m *Memory) GetUser(_ context.Context, id uint) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *u

	return &c, nil
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			c := *u

			return &c, nil
		}
	}

	return nil, ErrNotFound
}

func (m *Memory) UserExists(ctx context.Context, username string) (bool, error) {
	_, err := m.GetUserByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}

	return err == nil, err
}

func (m *Memory) SetStaff(_ context.Context, username string, staff bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username {
			u.IsStaff = staff

			return nil
		}
	}

	return ErrNotFound
}

// Tokens

func (m *Memory) GetOrCreateToken(_ context.Context, userID uint, key string) (*model.AuthToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tokens {
		if t.UserID == userID {
			c := *t

			return &c, nil
		}
	}
	if _, ok := m.users[userID]; !ok {
		return nil, ErrNotFound
	}
	if _, taken := m.tokens[key]; taken {
		return nil, ErrConflict
	}

	t := &model.AuthToken{Key: key, UserID: userID, Created: m.now()}
	m.tokens[key] = t
	c := *t

	return &c, nil
}

func (m *Memory) GetToken(_ context.Context, userID uint) (*model.AuthToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, t := range m.tokens {
		if t.UserID == userID {
			c := *t

			return &c, nil
		}
	}

	return nil, ErrNotFound
}

func (m *Memory) UserByToken(_ context.Context, key string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tokens[key]
	if !ok {
		return nil, ErrNotFound
	}
	u, ok := m.users[t.UserID]
	if !ok {
		return nil, ErrNotFound
	}
	c := *u

	return &c, nil
}

func (m *Memory) DeleteToken(_ context.Context, userID uint) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, t := range m.tokens {
		if t.UserID == userID {
			delete(m.tokens, key)

			return key, nil
		}
	}

	return "", ErrNotFound
}

// Topics

func (m *Memory) ListTopics(_ context.Context) ([]model.Topic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	topics := make([]model.Topic, 0, len(m.topics))
	for _, t := range m.topics {
		topics = append(topics, *t)
	}
	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Name != topics[j].Name {
			return topics[i].Name < topics[j].Name
		}

		return topics[i].ID < topics[j].ID
	})

	return topics, nil
}

func (m *Memory) GetTopic(_ context.Context, id uint) (*model.Topic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.topics[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *t

	return &c, nil
}

func (m *Memory) CreateTopic(_ context.Context, t *model.Topic) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.topics {
		if existing.Name == t.Name {
			return ErrConflict
		}
	}

	t.ID = m.nextID()
	c := *t
	m.topics[t.ID] = &c

	return nil
}

// Articles

// hydrate copies a and fills its author and topic. Callers hold m.mu.
func (m *Memory) hydrate(a *model.Article) model.Article {
	c := *a
	if u, ok := m.users[a.AuthorID]; ok {
		c.Author = *u
	}
	if t, ok := m.topics[a.TopicID]; ok {
		c.Topic = *t
	}

	return c
}

func (q ArticleQuery) matches(a *model.Article) bool {
	if q.Published != nil && a.IsPublished != *q.Published {
		return false
	}
	if q.TopicID != 0 && a.TopicID != q.TopicID {
		return false
	}
	if q.AuthorID != 0 && a.AuthorID != q.AuthorID {
		return false
	}

	title, content := strings.ToLower(a.Title), strings.ToLower(a.Content)
	for _, term := range q.Terms() {
		term = strings.ToLower(term)
		if !strings.Contains(title, term) && !strings.Contains(content, term) {
			return false
		}
	}

	return true
}

func (m *Memory) ListArticles(_ context.Context, q ArticleQuery) ([]model.Article, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []model.Article
	for _, a := range m.articles {
		if q.matches(a) {
			matched = append(matched, m.hydrate(a))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}

		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	if q.Offset >= len(matched) {
		return []model.Article{}, total, nil
	}
	matched = matched[q.Offset:]
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}

	return matched, total, nil
}

func (m *Memory) GetArticle(_ context.Context, id uint) (*model.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.articles[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := m.hydrate(a)

	return &c, nil
}

func (m *Memory) GetArticleBySlug(_ context.Context, slug string) (*model.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.articles {
		if a.Slug == slug {
			c := m.hydrate(a)

			return &c, nil
		}
	}

	return nil, ErrNotFound
}

func (m *Memory) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := m.GetArticleBySlug(ctx, slug)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}

	return err == nil, err
}

func (m *Memory) CreateArticle(_ context.Context, a *model.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[a.AuthorID]; !ok {
		return ErrNotFound
	}
	if _, ok := m.topics[a.TopicID]; !ok {
		return ErrNotFound
	}
	for _, existing := range m.articles {
		if existing.Slug == a.Slug {
			return ErrConflict
		}
	}

	a.ID = m.nextID()
	a.CreatedAt = m.now()
	a.UpdatedAt = a.CreatedAt
	stored := *a
	stored.Author, stored.Topic = model.User{}, model.Topic{}
	m.articles[a.ID] = &stored
	*a = m.hydrate(&stored)

	return nil
}

func (m *Memory) UpdateArticle(_ context.Context, a *model.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.articles[a.ID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := m.topics[a.TopicID]; !ok {
		return ErrNotFound
	}

	stored := *a
	stored.Author, stored.Topic = model.User{}, model.Topic{}
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = m.now()
	m.articles[a.ID] = &stored
	*a = m.hydrate(&stored)

	return nil
}

func (m *Memory) DeleteArticle(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.articles[id]; !ok {
		return ErrNotFound
	}
	delete(m.articles, id)
	for rid, r := range m.reviews {
		if r.ArticleID == id {
			delete(m.reviews, rid)
		}
	}

	return nil
}

// Reviews

func (m *Memory) hydrateReview(r *model.Review) model.Review {
	c := *r
	if u, ok := m.users[r.UserID]; ok {
		c.User = *u
	}
	if a, ok := m.articles[r.ArticleID]; ok {
		c.Article = *a
	}

	return c
}

func (m *Memory) ListReviews(_ context.Context, articleID uint) ([]model.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	reviews := []model.Review{}
	for _, r := range m.reviews {
		if r.ArticleID == articleID {
			reviews = append(reviews, m.hydrateReview(r))
		}
	}
	sort.Slice(reviews, func(i, j int) bool {
		if !reviews[i].CreatedAt.Equal(reviews[j].CreatedAt) {
			return reviews[i].CreatedAt.Before(reviews[j].CreatedAt)
		}

		return reviews[i].ID < reviews[j].ID
	})

	return reviews, nil
}

func (m *Memory) GetReview(_ context.Context, id uint) (*model.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reviews[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := m.hydrateReview(r)

	return &c, nil
}

func (m *Memory) CreateReview(_ context.Context, r *model.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.articles[r.ArticleID]; !ok {
		return ErrNotFound
	}
	if _, ok := m.users[r.UserID]; !ok {
		return ErrNotFound
	}

	r.ID = m.nextID()
	r.CreatedAt = m.now()
	stored := *r
	stored.User, stored.Article = model.User{}, model.Article{}
	m.reviews[r.ID] = &stored
	*r = m.hydrateReview(&stored)

	return nil
}

func (m *Memory) UpdateReview(_ context.Context, r *model.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.reviews[r.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Text = r.Text

	return nil
}

func (m *Memory) DeleteReview(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reviews[id]; !ok {
		return ErrNotFound
	}
	delete(m.reviews, id)

	return nil
}
