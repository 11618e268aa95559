package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinedu/clined-api/internal/dto"
	"github.com/clinedu/clined-api/internal/models"
)

type siteRepoStub struct {
	sites    []models.ClinicalSite
	listHits int
}

func (s *siteRepoStub) FindByID(ctx context.Context, id string) (*models.ClinicalSite, error) {
	for i := range s.sites {
		if s.sites[i].ID == id {
			return &s.sites[i], nil
		}
	}
	return nil, context.Canceled
}

func (s *siteRepoStub) ListActive(ctx context.Context) ([]models.ClinicalSite, error) {
	s.listHits++
	return s.sites, nil
}

func (s *siteRepoStub) Create(ctx context.Context, site *models.ClinicalSite) error {
	site.ID = "site-new"
	s.sites = append(s.sites, *site)
	return nil
}

func (s *siteRepoStub) Update(ctx context.Context, site *models.ClinicalSite) error {
	return nil
}

type cacheStub struct {
	store   map[string][]byte
	deletes int
}

func (s *cacheStub) GetJSON(ctx context.Context, key string, target interface{}) (bool, error) {
	raw, ok := s.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, target)
}

func (s *cacheStub) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if s.store == nil {
		s.store = map[string][]byte{}
	}
	s.store[key] = raw
	return nil
}

func (s *cacheStub) Delete(ctx context.Context, key string) error {
	s.deletes++
	delete(s.store, key)
	return nil
}

func TestSiteDirectoryUsesCache(t *testing.T) {
	repo := &siteRepoStub{sites: []models.ClinicalSite{{ID: "site-1", Name: "General Hospital", Active: true}}}
	cache := &cacheStub{}
	svc := NewSiteService(repo, cache, time.Minute, nil, nil)

	first, err := svc.Directory(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, repo.listHits)

	second, err := svc.Directory(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 1, repo.listHits, "second read must come from cache")
}

func TestSiteMutationsInvalidateCache(t *testing.T) {
	repo := &siteRepoStub{sites: []models.ClinicalSite{{ID: "site-1", Name: "General Hospital", Active: true}}}
	cache := &cacheStub{}
	svc := NewSiteService(repo, cache, time.Minute, nil, nil)

	_, err := svc.Directory(context.Background())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), dto.CreateSiteRequest{Name: "Clinic B", Capacity: 12})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.deletes)

	_, err = svc.Directory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listHits, "cache was invalidated, repo hit again")
}

func TestSiteDirectoryWithoutCache(t *testing.T) {
	repo := &siteRepoStub{sites: []models.ClinicalSite{{ID: "site-1", Name: "General Hospital", Active: true}}}
	svc := NewSiteService(repo, nil, 0, nil, nil)

	_, err := svc.Directory(context.Background())
	require.NoError(t, err)
	_, err = svc.Directory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listHits)
}
