package commands

import (
	"context"
	"fmt"

	"github.com/cryptoganster/content-pipeline/internal/ingestion/events"
)

// ConfigureSource encrypts and stores credentials for a source, then
// publishes SourceConfigured so adapters resolving this source pick up the
// new secret on their next fetch.
func (h *Handlers) ConfigureSource(ctx context.Context, cmd ConfigureSource) error {
	s, err := h.Sources.Get(ctx, cmd.SourceID)
	if err != nil {
		return fmt.Errorf("configureSource: load: %w", err)
	}

	key, err := h.KeyProvider.GetKey(ctx)
	if err != nil {
		return fmt.Errorf("configureSource: key: %w", err)
	}
	ciphertext, err := h.Cipher.Encrypt(cmd.Credentials, key)
	if err != nil {
		return fmt.Errorf("configureSource: encrypt: %w", err)
	}

	s.SetCredentials(ciphertext)
	if err := h.Sources.Save(ctx, s); err != nil {
		return fmt.Errorf("configureSource: save: %w", err)
	}

	h.Events.Publish(ctx, events.SourceConfigured{SourceID: s.ID})
	return nil
}
