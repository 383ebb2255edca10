package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-context/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/repository"
)

const (
	defaultSearchSize = 10
	maxSearchSize     = 50
)

// document is what gets stored per user: the snapshot plus a searchable E.164 phone.
type document struct {
	entity.Snapshot
	Phone string `json:"phone,omitempty"`
}

func newDocument(s entity.Snapshot) document {
	d := document{Snapshot: s}
	if s.PhoneNumber != "" {
		d.Phone = s.PhoneCountryCode + s.PhoneNumber
	}
	return d
}

// UserIndex keeps the user search projection.
type UserIndex struct {
	es      *elasticsearch.Client
	index   string
	timeout time.Duration
	logger  logrus.FieldLogger
}

func NewUserIndex(es *elasticsearch.Client, index string, timeout time.Duration, logger logrus.FieldLogger) *UserIndex {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &UserIndex{es: es, index: index, timeout: timeout, logger: logger}
}

// Index upserts the user document. Deleted users are removed instead.
func (x *UserIndex) Index(ctx context.Context, s entity.Snapshot) error {
	if s.DeletedAt != nil {
		return x.Remove(ctx, s.ID)
	}
	b, err := json.Marshal(newDocument(s))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.index, DocumentID: s.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		x.logger.WithError(err).WithField("user_id", s.ID).Warn("es index failed")
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		x.logger.WithField("status", res.Status()).WithField("user_id", s.ID).Warn("es index response error")
		return fmt.Errorf("es index %s: %s", s.ID, res.Status())
	}
	return nil
}

// Remove deletes the user document; a missing document is not an error.
func (x *UserIndex) Remove(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: x.index, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es delete %s: %s", id, res.Status())
	}
	return nil
}

// Search performs a multi_match search on email, username and phone.
func (x *UserIndex) Search(ctx context.Context, q string, size int) ([]entity.Snapshot, error) {
	if size <= 0 || size > maxSearchSize {
		size = defaultSearchSize
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "username^2", "phone", "external_id"},
			},
		},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()

	res, err := x.es.Search(x.es.Search.WithContext(c), x.es.Search.WithIndex(x.index), x.es.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string   `json:"_id"`
				Source document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]entity.Snapshot, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source.Snapshot)
	}
	return out, nil
}

var _ repository.UserSearcher = (*UserIndex)(nil)
