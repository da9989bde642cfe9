package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
)

const defaultIndexTimeout = 3 * time.Second

// RecipeIndex mirrors recipes into Elasticsearch for full-text search.
// A nil *RecipeIndex is valid and does nothing.
type RecipeIndex struct {
	ES      *elasticsearch.Client
	Index   string
	Timeout time.Duration
	Logger  *logrus.Logger
}

func NewRecipeIndex(es *elasticsearch.Client, index string, timeout time.Duration, logger *logrus.Logger) *RecipeIndex {
	if es == nil || index == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = defaultIndexTimeout
	}
	return &RecipeIndex{ES: es, Index: index, Timeout: timeout, Logger: logger}
}

const recipeMapping = `{
  "mappings": {
    "properties": {
      "id":           {"type": "long"},
      "user_id":      {"type": "long"},
      "title":        {"type": "text"},
      "description":  {"type": "text"},
      "time_minutes": {"type": "integer"},
      "price":        {"type": "keyword"},
      "tags":         {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "ingredients":  {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "updated_at":   {"type": "date"}
    }
  }
}`

// EnsureIndex creates the recipe index with its mapping when it is missing.
func (x *RecipeIndex) EnsureIndex(ctx context.Context) error {
	if x == nil {
		return nil
	}
	c, cancel := context.WithTimeout(ctx, x.Timeout)
	defer cancel()
	res, err := x.ES.Indices.Exists([]string{x.Index}, x.ES.Indices.Exists.WithContext(c))
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}
	res, err = x.ES.Indices.Create(x.Index,
		x.ES.Indices.Create.WithContext(c),
		x.ES.Indices.Create.WithBody(strings.NewReader(recipeMapping)))
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es create index: %s", res.Status())
	}
	if x.Logger != nil {
		x.Logger.WithField("index", x.Index).Info("search index created")
	}
	return nil
}

func recipeDocument(r *entity.Recipe) map[string]any {
	tags := make([]string, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, t.Name)
	}
	ingredients := make([]string, 0, len(r.Ingredients))
	for _, i := range r.Ingredients {
		ingredients = append(ingredients, i.Name)
	}
	return map[string]any{
		"id":           r.ID,
		"user_id":      r.UserID,
		"title":        r.Title,
		"description":  r.Description,
		"time_minutes": r.TimeMinutes,
		"price":        r.Price.StringFixed(2),
		"tags":         tags,
		"ingredients":  ingredients,
		"updated_at":   r.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func (x *RecipeIndex) Put(ctx context.Context, r *entity.Recipe) error {
	if x == nil {
		return nil
	}
	b, err := json.Marshal(recipeDocument(r))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.Index, DocumentID: strconv.FormatInt(r.ID, 10), Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, x.Timeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		x.warn(err, r.ID, "es index failed")
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		x.warn(nil, r.ID, "es index response error: "+res.Status())
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

func (x *RecipeIndex) Remove(ctx context.Context, id int64) error {
	if x == nil {
		return nil
	}
	req := esapi.DeleteRequest{Index: x.Index, DocumentID: strconv.FormatInt(id, 10)}
	c, cancel := context.WithTimeout(ctx, x.Timeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		x.warn(err, id, "es delete failed")
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

// Search returns ids of the owner's recipes matching q, best match first.
func (x *RecipeIndex) Search(ctx context.Context, userID int64, q string, size int) ([]int64, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"title^2", "description", "tags", "ingredients"},
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"user_id": userID},
				},
			},
		},
		"size":    size,
		"_source": false,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, x.Timeout)
	defer cancel()

	res, err := x.ES.Search(x.ES.Search.WithContext(c), x.ES.Search.WithIndex(x.Index), x.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		id, err := strconv.ParseInt(h.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (x *RecipeIndex) warn(err error, recipeID int64, msg string) {
	if x.Logger == nil {
		return
	}
	entry := x.Logger.WithField("recipe_id", recipeID)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn(msg)
}
