package backup

import (
	"bytes"
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/nurturefox/trackd/internal/keyring"
	"github.com/nurturefox/trackd/internal/store"
)

// ExportSealed produces an encrypted export blob using the per-install key.
func ExportSealed(ctx context.Context, s store.Store, key []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := Export(ctx, s, &buf); err != nil {
		return nil, err
	}
	sealed, err := keyring.Seal(key, buf.Bytes())
	if err != nil {
		return nil, errors.Wrap(err, "seal export")
	}
	return sealed, nil
}

// ImportSealed decrypts a blob produced by ExportSealed and imports it.
// Decryption failure, like a parse failure, aborts before any deletion.
func ImportSealed(ctx context.Context, s store.Store, key, sealed []byte) (int, error) {
	plaintext, err := keyring.Open(key, sealed)
	if err != nil {
		return 0, errors.Wrap(err, "unseal import")
	}
	return Import(ctx, s, bytes.NewReader(plaintext))
}

// ReadAllAndImportSealed is a convenience for stream-shaped callers.
func ReadAllAndImportSealed(ctx context.Context, s store.Store, key []byte, r io.Reader) (int, error) {
	sealed, err := io.ReadAll(r)
	if err != nil {
		return 0, errors.Wrap(err, "read sealed import")
	}
	return ImportSealed(ctx, s, key, sealed)
}
