package imsgstats

import (
	"context"

	"github.com/imsgstats/imsgstats/internal/imessagedb/datasource/dbm"
	"github.com/imsgstats/imsgstats/internal/imessagedb/indexer"
	"github.com/imsgstats/imsgstats/internal/imessagedb/repository"
	"github.com/imsgstats/imsgstats/internal/model"
)

// Search queries the full-text index of the extracted messages, rebuilding it
// when the extracted tables changed since it was built.
func (s *Service) Search(ctx context.Context, req *model.SearchRequest, rebuild bool) (*model.SearchResponse, error) {
	d := dbm.NewDBManager(s.conf.GetDataDir())
	d.AddGroup(dbm.Message, s.path(MessagesFile))
	d.AddGroup(dbm.Contact, s.path(ContactsFile))
	fp, err := d.FingerprintForGroups(dbm.Message, dbm.Contact)
	if err != nil {
		return nil, err
	}

	idx, err := indexer.Open(s.conf.GetSearch().IndexDir)
	if err != nil {
		return nil, err
	}
	defer idx.Close()

	ds := s.tableDS()
	defer ds.Close()
	repo := repository.New(ds, idx)

	status, err := repo.EnsureIndex(ctx, fp, rebuild)
	if err != nil {
		return nil, err
	}
	if req.Limit <= 0 {
		req.Limit = s.conf.GetSearch().Limit
	}
	resp, err := repo.SearchMessages(ctx, req)
	if err != nil {
		return nil, err
	}
	resp.Index = status
	return resp, nil
}
