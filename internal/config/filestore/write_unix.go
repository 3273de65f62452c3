//go:build !windows

package filestore

import (
	"fmt"

	"github.com/google/renameio/v2"
)

// atomicWrite replaces path via a pending temp file that is fsynced and
// renamed over the target; the temp file is removed if anything fails.
func atomicWrite(path string, data []byte) error {
	pending, err := renameio.NewPendingFile(path,
		renameio.WithPermissions(0644),
		renameio.WithExistingPermissions())
	if err != nil {
		return fmt.Errorf("creating pending config file: %w", err)
	}
	defer pending.Cleanup()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("writing config data: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replacing config file: %w", err)
	}
	return nil
}
