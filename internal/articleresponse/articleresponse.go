package articleresponse

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/blog/internal/model"
)

// ArticleResponse is the response payload for the Article data model.
//
// The author is flattened to a username and the topic is nested.
type ArticleResponse struct {
	*model.Article

	Author string         `json:"author"`
	Topic  *TopicResponse `json:"topic"`
}

func NewArticleResponse(article *model.Article) *ArticleResponse {
	return &ArticleResponse{
		Article: article,
		Author:  article.Author.Username,
		Topic:   NewTopicResponse(&article.Topic),
	}
}

func NewArticleListResponse(articles []model.Article) []render.Renderer {
	list := []render.Renderer{}
	for i := range articles {
		list = append(list, NewArticleResponse(&articles[i]))
	}

	return list
}

func (rd *ArticleResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// TopicResponse is the response payload for the Topic data model.
type TopicResponse struct {
	*model.Topic
}

func NewTopicResponse(topic *model.Topic) *TopicResponse {
	return &TopicResponse{Topic: topic}
}

func NewTopicListResponse(topics []model.Topic) []render.Renderer {
	list := []render.Renderer{}
	for i := range topics {
		list = append(list, NewTopicResponse(&topics[i]))
	}

	return list
}

func (rd *TopicResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
