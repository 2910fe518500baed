package pac

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// writeFileAtomic writes the data to a temporary file next to the target and renames it over the
// target, so that readers never see a partially-written file.
func writeFileAtomic(filePath string, data []byte) (err error) {
	dir := filepath.Dir(filePath)
	if err = EnsureExists(dir); err != nil {
		return errors.Wrapf(err, "couldn't make directory %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "couldn't make temporary file in %s", dir)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "couldn't write to %s", tmp.Name())
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "couldn't flush %s", tmp.Name())
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "couldn't close %s", tmp.Name())
	}
	const perm = 0o644 // owner rw, group r, public r
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return errors.Wrapf(err, "couldn't set permissions of %s", tmp.Name())
	}
	if err = os.Rename(tmp.Name(), filePath); err != nil {
		return errors.Wrapf(err, "couldn't replace %s", filePath)
	}
	return nil
}
