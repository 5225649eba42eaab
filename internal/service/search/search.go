package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/pendoke/pendo-backend/internal/models"
)

// Counselors queries the counselor index by name, specialty and school.
func Counselors(ctx context.Context, es *elasticsearch.Client, index, query string, from, size int) (int64, []models.Counselor, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^2", "specialty^2", "assigned_school"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct{ Value int64 } `json:"total"`
			Hits  []struct {
				Source models.Counselor `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	counselors := make([]models.Counselor, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		counselors[i] = hit.Source
	}
	return r.Hits.Total.Value, counselors, nil
}

// Index writes one counselor document, keyed by its id.
func Index(ctx context.Context, es *elasticsearch.Client, index string, counselor models.Counselor) error {
	doc, err := json.Marshal(counselor)
	if err != nil {
		return fmt.Errorf("search: encode doc: %w", err)
	}

	res, err := es.Index(
		index,
		bytes.NewReader(doc),
		es.Index.WithContext(ctx),
		es.Index.WithDocumentID(fmt.Sprint(counselor.ID)),
	)
	if err != nil {
		return fmt.Errorf("search: index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("search: index: %s", res.Status())
	}
	return nil
}

// Delete removes a counselor document; a missing document is not an error.
func Delete(ctx context.Context, es *elasticsearch.Client, index string, id uint) error {
	res, err := es.Delete(
		index,
		fmt.Sprint(id),
		es.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("search: delete: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("search: delete: %s", res.Status())
	}
	return nil
}
