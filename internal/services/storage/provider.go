package storage

import (
	"errors"
	"fmt"

	"github.com/mlenoir/vidvault/internal/config"
	"github.com/mlenoir/vidvault/internal/models"
)

var (
	// ErrUnconfigured means no provider has a complete credential set
	ErrUnconfigured = errors.New("no storage provider configured")
	// ErrUnknownProvider means the requested provider identifier is not
	// one of the supported backends
	ErrUnknownProvider = errors.New("unknown storage provider")
)

// ProviderConfig is one fully resolved backend: endpoint, bucket and
// credentials. Components downstream of the selector are provider
// agnostic and only ever see this record.
type ProviderConfig struct {
	Provider        models.Provider
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

func hasR2(cfg *config.Config) bool {
	return cfg.R2AccessKeyID != "" && cfg.R2SecretAccessKey != ""
}

func hasDO(cfg *config.Config) bool {
	return cfg.DOAccessKeyID != "" && cfg.DOSecretAccessKey != ""
}

// Resolve picks the backend for one request. An explicit preference must
// name a supported provider; with no preference, Spaces wins over R2 when
// both are configured. Resolution is pure and re-evaluated per request.
func Resolve(cfg *config.Config, preferred string) (ProviderConfig, error) {
	switch preferred {
	case "":
		if hasDO(cfg) {
			return doConfig(cfg), nil
		}
		if hasR2(cfg) {
			return r2Config(cfg), nil
		}
		return ProviderConfig{}, ErrUnconfigured
	case string(models.ProviderDO):
		if !hasDO(cfg) {
			return ProviderConfig{}, ErrUnconfigured
		}
		return doConfig(cfg), nil
	case string(models.ProviderR2):
		if !hasR2(cfg) {
			return ProviderConfig{}, ErrUnconfigured
		}
		return r2Config(cfg), nil
	default:
		return ProviderConfig{}, fmt.Errorf("%w: %q", ErrUnknownProvider, preferred)
	}
}

// Available reports which providers carry complete credentials
func Available(cfg *config.Config) map[string]bool {
	return map[string]bool{
		string(models.ProviderR2): hasR2(cfg),
		string(models.ProviderDO): hasDO(cfg),
	}
}

func r2Config(cfg *config.Config) ProviderConfig {
	return ProviderConfig{
		Provider:        models.ProviderR2,
		Endpoint:        fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID),
		Region:          "auto",
		Bucket:          cfg.R2BucketName,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
	}
}

func doConfig(cfg *config.Config) ProviderConfig {
	return ProviderConfig{
		Provider:        models.ProviderDO,
		Endpoint:        fmt.Sprintf("https://%s.digitaloceanspaces.com", cfg.DORegion),
		Region:          cfg.DORegion,
		Bucket:          cfg.DOBucketName,
		AccessKeyID:     cfg.DOAccessKeyID,
		SecretAccessKey: cfg.DOSecretAccessKey,
	}
}
