package indexer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	_ "github.com/blevesearch/bleve/v2/search/highlight/highlighter/ansi"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/imsgstats/imsgstats/internal/model"
	"github.com/imsgstats/imsgstats/pkg/util"
)

const (
	runtimeIndexVersionKey = "imsgstats_index_version"
	runtimeIndexVersion    = "1"
	fingerprintKey         = "imsgstats_index_fingerprint"
	lastBuiltKey           = "imsgstats_index_last_built"

	DefaultLimit = 20
	MaxLimit     = 200
)

// SearchHit is a single Bleve hit mapped back to a message.
type SearchHit struct {
	Message *model.Message
	Snippet string
	Score   float64
}

// Index wraps a Bleve index of joined messages.
type Index struct {
	mu   sync.RWMutex
	idx  bleve.Index
	path string
}

// Open opens the index at path or creates it with the message mapping.
func Open(path string) (*Index, error) {
	parent := filepath.Dir(path)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("create index parent dir: %w", err)
	}

	var (
		idx bleve.Index
		err error
	)
	if _, statErr := os.Stat(path); statErr == nil {
		idx, err = bleve.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open bleve index: %w", err)
		}
	} else if errors.Is(statErr, os.ErrNotExist) {
		idx, err = bleve.New(path, buildMapping())
		if err != nil {
			return nil, fmt.Errorf("create bleve index: %w", err)
		}
	} else {
		return nil, fmt.Errorf("stat index: %w", statErr)
	}

	return &Index{idx: idx, path: path}, nil
}

func (i *Index) Close() error {
	if i == nil {
		return nil
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.idx == nil {
		return nil
	}
	err := i.idx.Close()
	i.idx = nil
	return err
}

// Reset drops every document and metadata key.
func (i *Index) Reset() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.idx != nil {
		_ = i.idx.Close()
	}
	if err := os.RemoveAll(i.path); err != nil {
		return fmt.Errorf("remove index dir: %w", err)
	}
	idx, err := bleve.New(i.path, buildMapping())
	if err != nil {
		return fmt.Errorf("recreate bleve index: %w", err)
	}
	i.idx = idx
	return nil
}

// SetMetadata stores a non-searchable key/value pair.
func (i *Index) SetMetadata(key string, value []byte) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.idx == nil {
		return errors.New("index not initialized")
	}
	return i.idx.SetInternal([]byte(key), value)
}

func (i *Index) GetMetadata(key string) ([]byte, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.idx == nil {
		return nil, errors.New("index not initialized")
	}
	return i.idx.GetInternal([]byte(key))
}

// DocCount returns the number of indexed messages.
func (i *Index) DocCount() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.idx == nil {
		return 0, errors.New("index not initialized")
	}
	return i.idx.DocCount()
}

// IndexMessages adds messages in batches.
func (i *Index) IndexMessages(messages []*model.Message) error {
	if len(messages) == 0 {
		return nil
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.idx == nil {
		return errors.New("index not initialized")
	}

	batch := i.idx.NewBatch()
	const batchSize = 250
	for n, msg := range messages {
		doc, err := newDocument(msg)
		if err != nil {
			return err
		}
		if err := batch.Index(doc.ID, doc); err != nil {
			return fmt.Errorf("batch index: %w", err)
		}
		if (n+1)%batchSize == 0 {
			if err := i.idx.Batch(batch); err != nil {
				return fmt.Errorf("flush batch: %w", err)
			}
			batch = i.idx.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := i.idx.Batch(batch); err != nil {
			return fmt.Errorf("flush final batch: %w", err)
		}
	}

	return nil
}

// Search runs req against the index. It returns the hits of the requested page and the total.
func (i *Index) Search(req *model.SearchRequest) ([]*SearchHit, int, error) {
	if req == nil {
		return nil, 0, errors.New("search request is nil")
	}

	queryObj := buildQuery(req)
	if queryObj == nil {
		return []*SearchHit{}, 0, nil
	}

	i.mu.RLock()
	idx := i.idx
	i.mu.RUnlock()
	if idx == nil {
		return nil, 0, errors.New("index not initialized")
	}

	limit, offset := ClampPage(req.Limit, req.Offset)

	searchRequest := bleve.NewSearchRequestOptions(queryObj, limit, offset, false)
	searchRequest.Highlight = bleve.NewHighlightWithStyle("ansi")
	searchRequest.Highlight.AddField("content")
	searchRequest.Fields = []string{"message_json"}
	searchRequest.SortBy([]string{"-_score", "-unix"})

	result, err := idx.Search(searchRequest)
	if err != nil {
		return nil, 0, fmt.Errorf("bleve search: %w", err)
	}

	hits := make([]*SearchHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		messageJSON, ok := hit.Fields["message_json"].(string)
		if !ok || messageJSON == "" {
			continue
		}
		var msg model.Message
		if err := json.Unmarshal([]byte(messageJSON), &msg); err != nil {
			return nil, 0, fmt.Errorf("decode message: %w", err)
		}

		snippet := ""
		if frags, ok := hit.Fragments["content"]; ok && len(frags) > 0 {
			snippet = strings.Join(frags, " … ")
		}

		hits = append(hits, &SearchHit{
			Message: &msg,
			Snippet: snippet,
			Score:   hit.Score,
		})
	}

	return hits, int(result.Total), nil
}

// ClampPage applies the default and maximum page size.
func ClampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

type document struct {
	ID          string `json:"id"`
	Person      string `json:"person"`
	Direction   string `json:"direction"`
	Unix        int64  `json:"unix"`
	Content     string `json:"content"`
	MessageJSON string `json:"message_json"`
}

func newDocument(msg *model.Message) (*document, error) {
	if msg == nil {
		return nil, errors.New("nil message")
	}
	messageJSON, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}
	return &document{
		ID:          strconv.FormatInt(msg.ID, 10),
		Person:      strings.ToLower(msg.FirstName()),
		Direction:   strings.ToLower(msg.Direction.String()),
		Unix:        msg.Time.Unix(),
		Content:     msg.Text,
		MessageJSON: string(messageJSON),
	}, nil
}

func buildMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = "standard"

	docMapping := mapping.NewDocumentMapping()

	contentField := mapping.NewTextFieldMapping()
	contentField.Analyzer = "standard"
	contentField.Store = true
	contentField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("content", contentField)

	for _, name := range []string{"person", "direction"} {
		f := mapping.NewTextFieldMapping()
		f.Analyzer = "keyword"
		f.Store = true
		f.IncludeInAll = false
		docMapping.AddFieldMappingsAt(name, f)
	}

	unixField := mapping.NewNumericFieldMapping()
	unixField.Store = true
	docMapping.AddFieldMappingsAt("unix", unixField)

	messageField := mapping.NewTextFieldMapping()
	messageField.Analyzer = "keyword"
	messageField.Store = true
	messageField.Index = false
	docMapping.AddFieldMappingsAt("message_json", messageField)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

func buildQuery(req *model.SearchRequest) query.Query {
	var must []query.Query
	if q := buildContentQuery(req.Query); q != nil {
		must = append(must, q)
	}

	if people := lowerAll(util.Str2List(req.Person, ",")); len(people) > 0 {
		must = append(must, buildTermsFilter("person", people))
	}
	if dir := strings.ToLower(strings.TrimSpace(req.Direction)); dir != "" {
		must = append(must, buildTermsFilter("direction", []string{dir}))
	}
	if !req.Start.IsZero() || !req.End.IsZero() {
		var minPtr, maxPtr *float64
		inclusive := true
		if !req.Start.IsZero() {
			min := float64(req.Start.Unix())
			minPtr = &min
		}
		if !req.End.IsZero() {
			max := float64(req.End.Unix())
			maxPtr = &max
		}
		rangeQuery := query.NewNumericRangeInclusiveQuery(minPtr, maxPtr, &inclusive, &inclusive)
		rangeQuery.SetField("unix")
		must = append(must, rangeQuery)
	}

	if len(must) == 0 {
		return nil
	}
	if len(must) == 1 {
		return must[0]
	}
	return query.NewConjunctionQuery(must)
}

// buildContentQuery ANDs plain keywords; input using query string syntax is passed through.
func buildContentQuery(input string) query.Query {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil
	}

	upper := strings.ToUpper(s)
	advanced := strings.ContainsAny(s, "\"*+-:") ||
		strings.Contains(upper, " AND ") ||
		strings.Contains(upper, " OR ")
	if advanced {
		return query.NewQueryStringQuery(s)
	}

	tokens := strings.Fields(s)
	conj := make([]query.Query, 0, len(tokens))
	for _, token := range tokens {
		mq := query.NewMatchQuery(token)
		mq.SetField("content")
		conj = append(conj, mq)
	}
	if len(conj) == 1 {
		return conj[0]
	}
	return query.NewConjunctionQuery(conj)
}

func buildTermsFilter(field string, values []string) query.Query {
	terms := make([]query.Query, 0, len(values))
	for _, val := range values {
		tq := query.NewTermQuery(val)
		tq.SetField(field)
		terms = append(terms, tq)
	}
	if len(terms) == 1 {
		return terms[0]
	}
	return query.NewDisjunctionQuery(terms)
}

func lowerAll(values []string) []string {
	for n, v := range values {
		values[n] = strings.ToLower(v)
	}
	return values
}

// EnsureVersion reports whether the stored index version matches, recording it when not.
func (i *Index) EnsureVersion() (bool, error) {
	current, _ := i.GetMetadata(runtimeIndexVersionKey)
	if string(current) == runtimeIndexVersion {
		return true, nil
	}
	if err := i.SetMetadata(runtimeIndexVersionKey, []byte(runtimeIndexVersion)); err != nil {
		return false, err
	}
	return false, nil
}

func (i *Index) Fingerprint() string {
	b, err := i.GetMetadata(fingerprintKey)
	if err != nil {
		return ""
	}
	return string(b)
}

// FingerprintMatches reports whether fp is the stored dataset fingerprint.
func (i *Index) FingerprintMatches(fp string) bool {
	if fp == "" {
		return false
	}
	return i.Fingerprint() == fp
}

// EnsureFingerprint returns true when fp is already stored. Otherwise it stores fp
// and returns false so the caller rebuilds.
func (i *Index) EnsureFingerprint(fp string) (bool, error) {
	if fp == "" {
		return false, nil
	}
	if i.Fingerprint() == fp {
		return true, nil
	}
	if err := i.SetMetadata(fingerprintKey, []byte(fp)); err != nil {
		return false, err
	}
	return false, nil
}

func (i *Index) UpdateLastBuilt(t time.Time) error {
	return i.SetMetadata(lastBuiltKey, []byte(strconv.FormatInt(t.Unix(), 10)))
}

func (i *Index) LastBuilt() time.Time {
	b, err := i.GetMetadata(lastBuiltKey)
	if err != nil || len(b) == 0 {
		return time.Time{}
	}
	sec, parseErr := strconv.ParseInt(string(b), 10, 64)
	if parseErr != nil {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}
