// Package assistant backs free-text questions with a full-text document
// index. It is optional: when the index is disabled or unreachable, callers
// fall back to their canned replies.
package assistant

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/goccy/go-json"

	commonerrors "claims-gateway/internal/common/errors"
	"claims-gateway/internal/common/logger"
)

// Document is one indexed answer snippet.
type Document struct {
	Topic  string `json:"topic"`
	Text   string `json:"text"`
	Answer string `json:"answer"`
}

type Index struct {
	client *elasticsearch.Client
	name   string
	logger logger.Logger
}

func NewIndex(client *elasticsearch.Client, name string, log logger.Logger) *Index {
	if name == "" {
		name = "claims-assistant"
	}
	return &Index{
		client: client,
		name:   name,
		logger: log.WithFields(map[string]interface{}{"component": "assistant-index"}),
	}
}

// Add indexes one document.
func (i *Index) Add(ctx context.Context, id string, doc Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return commonerrors.NewSearchQueryFailedError(err)
	}

	res, err := i.client.Index(
		i.name,
		bytes.NewReader(body),
		i.client.Index.WithDocumentID(id),
		i.client.Index.WithContext(ctx),
		i.client.Index.WithRefresh("true"),
	)
	if err != nil {
		return commonerrors.NewSearchQueryFailedError(err)
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	if res.IsError() {
		return commonerrors.NewSearchQueryFailedError(fmt.Errorf("index document: %s", res.Status()))
	}
	return nil
}

// Answer runs a match query over topic and text and returns the best hit's
// answer, or empty when nothing matches.
func (i *Index) Answer(ctx context.Context, query string) (string, error) {
	searchBody := map[string]interface{}{
		"size": 1,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"topic^2", "text"},
			},
		},
	}
	encoded, err := json.Marshal(searchBody)
	if err != nil {
		return "", commonerrors.NewSearchQueryFailedError(err)
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.name),
		i.client.Search.WithBody(strings.NewReader(string(encoded))),
	)
	if err != nil {
		return "", commonerrors.NewSearchQueryFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return "", commonerrors.NewSearchQueryFailedError(fmt.Errorf("search: %s", res.Status()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return "", commonerrors.NewSearchQueryFailedError(err)
	}
	if len(parsed.Hits.Hits) == 0 {
		return "", nil
	}
	return parsed.Hits.Hits[0].Source.Answer, nil
}
