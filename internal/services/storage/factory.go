package storage

import (
	"context"
	"time"

	"github.com/mlenoir/vidvault/internal/config"
	"github.com/mlenoir/vidvault/internal/models"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// ObjectStore is the object-store capability handlers consume
type ObjectStore interface {
	Provider() models.Provider
	List(ctx context.Context, prefix string) ([]models.StorageObject, error)
	SignedGetURL(ctx context.Context, key string) (string, error)
	SignedPutURL(ctx context.Context, key, contentType string, metadata map[string]string) (string, error)
	Delete(ctx context.Context, key string) error
	LoadBlob(ctx context.Context, code string) (*models.RemoteProgressBlob, error)
	SaveBlob(ctx context.Context, code string, blob *models.RemoteProgressBlob) error
}

// Factory resolves a provider and hands out a client per request
type Factory interface {
	ForProvider(preferred string) (ObjectStore, error)
	Available() map[string]bool
}

// ClientFactory builds real S3 clients from application configuration.
// The presigned-URL cache is shared across the clients it creates.
type ClientFactory struct {
	cfg    *config.Config
	urls   *gocache.Cache
	logger *logrus.Logger
}

// NewFactory creates the client factory
func NewFactory(cfg *config.Config, logger *logrus.Logger) *ClientFactory {
	return &ClientFactory{
		cfg:    cfg,
		urls:   gocache.New(urlCacheTTL, 10*time.Minute),
		logger: logger,
	}
}

// ForProvider resolves the preference against configured credentials and
// returns a client for the winning provider
func (f *ClientFactory) ForProvider(preferred string) (ObjectStore, error) {
	pc, err := Resolve(f.cfg, preferred)
	if err != nil {
		return nil, err
	}
	return NewClient(pc, f.urls, f.logger), nil
}

// Available reports which providers carry complete credentials
func (f *ClientFactory) Available() map[string]bool {
	return Available(f.cfg)
}
