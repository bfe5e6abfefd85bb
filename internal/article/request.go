package article

import (
	"net/http"
	"strings"

	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/SergeyParamoshkin/blog/internal/validate"
)

// ArticleRequest is the request payload for Article data model.
//
// Author, slug and id are not part of it: the author is always the caller
// and the slug is derived from the title.
type ArticleRequest struct {
	Title       *string `json:"title" validate:"omitnil,notblank,max=200"`
	Content     *string `json:"content" validate:"omitnil,notblank"`
	TopicID     *uint   `json:"topic_id"`
	IsPublished *bool   `json:"is_published"`
}

// Bind validates the payload. PATCH requests may omit any field.
func (p *ArticleRequest) Bind(r *http.Request) error {
	errs := validate.Struct(p)
	if r.Method != http.MethodPatch {
		errs.Require("title", p.Title != nil)
		errs.Require("content", p.Content != nil)
		errs.Require("topic_id", p.TopicID != nil)
	}

	return errs.Err()
}

// Apply copies every field present in the payload onto article.
func (p *ArticleRequest) Apply(article *model.Article) {
	if p.Title != nil {
		article.Title = strings.TrimSpace(*p.Title)
	}
	if p.Content != nil {
		article.Content = *p.Content
	}
	if p.TopicID != nil {
		article.TopicID = *p.TopicID
	}
	if p.IsPublished != nil {
		article.IsPublished = *p.IsPublished
	}
}

// DeleteRequest is the body of DELETE /articles/{slug}/.
type DeleteRequest struct {
	ConfirmDeletion bool `json:"confirm_deletion"`
}

func (p *DeleteRequest) Bind(r *http.Request) error {
	return nil
}
