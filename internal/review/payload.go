package review

import (
	"net/http"
	"time"

	"github.com/SergeyParamoshkin/blog/internal/model"
	"github.com/SergeyParamoshkin/blog/internal/validate"
)

// ReviewRequest is the request payload for the Review data model. Only the
// text is writable; article and user come from the route and the caller.
type ReviewRequest struct {
	Text *string `json:"text" validate:"omitnil,notblank"`
}

func (p *ReviewRequest) Bind(r *http.Request) error {
	errs := validate.Struct(p)
	if r.Method != http.MethodPatch {
		errs.Require("text", p.Text != nil)
	}

	return errs.Err()
}

// ReviewResponse is the response payload for the Review data model.
type ReviewResponse struct {
	ID           uint      `json:"id"`
	Article      uint      `json:"article"`
	ArticleTitle string    `json:"article_title"`
	User         uint      `json:"user"`
	Author       string    `json:"author"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewReviewResponse(rv *model.Review) *ReviewResponse {
	return &ReviewResponse{
		ID:           rv.ID,
		Article:      rv.ArticleID,
		ArticleTitle: rv.Article.Title,
		User:         rv.UserID,
		Author:       rv.User.Username,
		Text:         rv.Text,
		CreatedAt:    rv.CreatedAt,
	}
}

func (rd *ReviewResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
