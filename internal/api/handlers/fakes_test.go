package handlers

import (
	"context"
	"fmt"

	"github.com/mlenoir/vidvault/internal/models"
	"github.com/mlenoir/vidvault/internal/services/storage"
)

// fakeStore is an in-memory ObjectStore for handler tests
type fakeStore struct {
	provider models.Provider
	objects  []models.StorageObject
	blobs    map[string]*models.RemoteProgressBlob
	deleted  []string
	listErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		provider: models.ProviderR2,
		blobs:    make(map[string]*models.RemoteProgressBlob),
	}
}

func (f *fakeStore) Provider() models.Provider { return f.provider }

func (f *fakeStore) List(ctx context.Context, prefix string) ([]models.StorageObject, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.objects, nil
}

func (f *fakeStore) SignedGetURL(ctx context.Context, key string) (string, error) {
	return fmt.Sprintf("https://signed.example/%s?get", key), nil
}

func (f *fakeStore) SignedPutURL(ctx context.Context, key, contentType string, metadata map[string]string) (string, error) {
	return fmt.Sprintf("https://signed.example/%s?put", key), nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStore) LoadBlob(ctx context.Context, code string) (*models.RemoteProgressBlob, error) {
	blob, ok := f.blobs[code]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return blob, nil
}

func (f *fakeStore) SaveBlob(ctx context.Context, code string, blob *models.RemoteProgressBlob) error {
	f.blobs[code] = blob
	return nil
}

// fakeFactory hands back one fakeStore for every provider resolution
type fakeFactory struct {
	store      *fakeStore
	resolveErr error
}

func (f *fakeFactory) ForProvider(preferred string) (storage.ObjectStore, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return f.store, nil
}

func (f *fakeFactory) Available() map[string]bool {
	return map[string]bool{"r2": true, "do": false}
}
