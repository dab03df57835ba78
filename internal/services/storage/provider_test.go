package storage

import (
	"errors"
	"testing"

	"github.com/mlenoir/vidvault/internal/config"
	"github.com/mlenoir/vidvault/internal/models"
)

func fullConfig() *config.Config {
	return &config.Config{
		R2AccountID:       "acct",
		R2AccessKeyID:     "r2-key",
		R2SecretAccessKey: "r2-secret",
		R2BucketName:      "r2-bucket",
		DOAccessKeyID:     "do-key",
		DOSecretAccessKey: "do-secret",
		DORegion:          "sfo3",
		DOBucketName:      "do-bucket",
	}
}

func TestResolveExplicitR2(t *testing.T) {
	pc, err := Resolve(fullConfig(), "r2")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if pc.Provider != models.ProviderR2 {
		t.Errorf("provider = %v, want r2", pc.Provider)
	}
	if pc.Endpoint != "https://acct.r2.cloudflarestorage.com" {
		t.Errorf("endpoint = %q", pc.Endpoint)
	}
	if pc.Region != "auto" || pc.Bucket != "r2-bucket" {
		t.Errorf("unexpected config %+v", pc)
	}
}

func TestResolveExplicitDO(t *testing.T) {
	pc, err := Resolve(fullConfig(), "do")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if pc.Provider != models.ProviderDO {
		t.Errorf("provider = %v, want do", pc.Provider)
	}
	if pc.Endpoint != "https://sfo3.digitaloceanspaces.com" {
		t.Errorf("endpoint = %q", pc.Endpoint)
	}
}

func TestResolveAutoPrefersDO(t *testing.T) {
	pc, err := Resolve(fullConfig(), "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if pc.Provider != models.ProviderDO {
		t.Errorf("auto-detect picked %v, want do", pc.Provider)
	}
}

func TestResolveAutoFallsBackToR2(t *testing.T) {
	cfg := fullConfig()
	cfg.DOAccessKeyID = ""
	cfg.DOSecretAccessKey = ""

	pc, err := Resolve(cfg, "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if pc.Provider != models.ProviderR2 {
		t.Errorf("auto-detect picked %v, want r2", pc.Provider)
	}
}

func TestResolveUnconfigured(t *testing.T) {
	cfg := &config.Config{}

	if _, err := Resolve(cfg, ""); !errors.Is(err, ErrUnconfigured) {
		t.Errorf("err = %v, want ErrUnconfigured", err)
	}
	// Explicit preference for a credential-less provider is also unconfigured
	if _, err := Resolve(fullConfigWithoutR2(), "r2"); !errors.Is(err, ErrUnconfigured) {
		t.Errorf("err = %v, want ErrUnconfigured", err)
	}
}

func fullConfigWithoutR2() *config.Config {
	cfg := fullConfig()
	cfg.R2AccessKeyID = ""
	cfg.R2SecretAccessKey = ""
	return cfg
}

func TestResolveUnknownProvider(t *testing.T) {
	if _, err := Resolve(fullConfig(), "gcs"); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("err = %v, want ErrUnknownProvider", err)
	}
}

func TestAvailable(t *testing.T) {
	cfg := fullConfig()
	cfg.DOSecretAccessKey = ""

	got := Available(cfg)
	if !got["r2"] || got["do"] {
		t.Errorf("Available = %v, want r2 only", got)
	}
}
