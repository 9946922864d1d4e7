package repository

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/imsgstats/imsgstats/internal/errors"
	"github.com/imsgstats/imsgstats/internal/imessagedb/indexer"
	"github.com/imsgstats/imsgstats/internal/model"
)

// EnsureIndex rebuilds the search index from the joined messages unless it was
// already built for fingerprint.
func (r *Repository) EnsureIndex(ctx context.Context, fingerprint string, force bool) (*model.SearchIndexStatus, error) {
	if r.idx == nil {
		return nil, errors.New(nil, http.StatusServiceUnavailable, "search index not opened")
	}

	versionOK, err := r.idx.EnsureVersion()
	if err != nil {
		return nil, errors.Wrap(err, "read index version", http.StatusInternalServerError)
	}
	matches := false
	if versionOK && !force {
		matches = r.idx.FingerprintMatches(fingerprint)
	}

	status := &model.SearchIndexStatus{Fingerprint: fingerprint}
	if !matches {
		msgs, err := r.Messages(ctx)
		if err != nil {
			return nil, err
		}
		if err := r.idx.Reset(); err != nil {
			return nil, errors.Wrap(err, "reset index", http.StatusInternalServerError)
		}
		if err := r.idx.IndexMessages(msgs); err != nil {
			return nil, errors.Wrap(err, "index messages", http.StatusInternalServerError)
		}
		if _, err := r.idx.EnsureVersion(); err != nil {
			return nil, errors.Wrap(err, "write index version", http.StatusInternalServerError)
		}
		if _, err := r.idx.EnsureFingerprint(fingerprint); err != nil {
			return nil, errors.Wrap(err, "write index fingerprint", http.StatusInternalServerError)
		}
		if err := r.idx.UpdateLastBuilt(time.Now()); err != nil {
			return nil, errors.Wrap(err, "write index build time", http.StatusInternalServerError)
		}
		status.Rebuilt = true
		log.Info().Int("messages", len(msgs)).Str("fingerprint", fingerprint).Msg("search index rebuilt")
	}

	count, err := r.idx.DocCount()
	if err != nil {
		return nil, errors.Wrap(err, "count documents", http.StatusInternalServerError)
	}
	status.Ready = true
	status.Documents = int(count)
	status.LastBuilt = r.idx.LastBuilt()
	return status, nil
}

// SearchMessages runs a full-text query over the indexed messages.
func (r *Repository) SearchMessages(ctx context.Context, req *model.SearchRequest) (*model.SearchResponse, error) {
	if req == nil {
		return nil, errors.InvalidArg("request")
	}
	if r.idx == nil {
		return nil, errors.New(nil, http.StatusServiceUnavailable, "search index not opened")
	}

	nReq := req.Clone()
	nReq.Query = strings.TrimSpace(nReq.Query)
	nReq.Limit, nReq.Offset = indexer.ClampPage(nReq.Limit, nReq.Offset)
	if !nReq.Start.IsZero() && !nReq.End.IsZero() && nReq.End.Before(nReq.Start) {
		nReq.Start, nReq.End = nReq.End, nReq.Start
	}

	started := time.Now()
	hits, total, err := r.idx.Search(nReq)
	if err != nil {
		return nil, errors.Wrap(err, "search failed", http.StatusInternalServerError)
	}

	resp := &model.SearchResponse{
		Total:      total,
		Hits:       make([]*model.SearchHit, 0, len(hits)),
		DurationMs: time.Since(started).Milliseconds(),
		Limit:      nReq.Limit,
		Offset:     nReq.Offset,
		Query:      nReq.Query,
	}
	for _, h := range hits {
		resp.Hits = append(resp.Hits, &model.SearchHit{Message: h.Message, Snippet: h.Snippet, Score: h.Score})
	}

	log.Debug().Str("query", nReq.Query).Int("total", total).Int64("ms", resp.DurationMs).Msg("search done")
	return resp, nil
}
