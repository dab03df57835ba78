package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/mlenoir/vidvault/internal/models"
)

// Sync blobs live in their own folder, one JSON object per code
const syncFolder = "sync-data"

func blobKey(code string) string {
	return path.Join(syncFolder, strings.ToUpper(code)+".json")
}

// LoadBlob reads the remote progress blob for a sync code. Returns
// ErrNotFound when no blob exists for the code.
func (c *Client) LoadBlob(ctx context.Context, code string) (*models.RemoteProgressBlob, error) {
	body, err := c.GetObject(ctx, blobKey(code))
	if err != nil {
		return nil, err
	}

	var blob models.RemoteProgressBlob
	if err := json.Unmarshal(body, &blob); err != nil {
		return nil, fmt.Errorf("corrupt sync blob for code %q: %w", code, err)
	}
	if blob.WatchProgress == nil {
		blob.WatchProgress = models.ProgressMap{}
	}
	return &blob, nil
}

// SaveBlob writes the remote progress blob for a sync code wholesale.
// Concurrent writers race read-modify-write on the whole blob; the
// per-key merge keeps that race convergent rather than serialized.
func (c *Client) SaveBlob(ctx context.Context, code string, blob *models.RemoteProgressBlob) error {
	body, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("failed to marshal sync blob: %w", err)
	}
	return c.PutObject(ctx, blobKey(code), body, "application/json")
}
