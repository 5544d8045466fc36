package snapshot

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"newsdigest/internal/feed"
)

// Writer persists a digest under one blob name.
type Writer struct {
	store  Store
	name   string
	encode Encoder
	logger logrus.FieldLogger
}

func NewWriter(store Store, name string, encode Encoder, logger logrus.FieldLogger) *Writer {
	return &Writer{store: store, name: name, encode: encode, logger: logger}
}

// Write serializes d and replaces the stored snapshot. Any error is fatal to
// the run and is returned to the caller.
func (w *Writer) Write(ctx context.Context, d feed.Digest) error {
	content, err := w.encode(d)
	if err != nil {
		return fmt.Errorf("error writing snapshot %s: %w", w.name, err)
	}
	if err := w.store.WriteBlob(ctx, w.name, content); err != nil {
		return fmt.Errorf("error writing snapshot %s: %w", w.name, err)
	}

	w.logger.WithFields(logrus.Fields{
		"name":  w.name,
		"bytes": len(content),
		"items": len(d.Items),
	}).Infof("Successfully wrote %s", w.name)
	return nil
}
