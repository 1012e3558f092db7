package reconcile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"
)

// BackupPrefix starts the name of backup folders, followed by the unix time
// of the run.
const BackupPrefix = "backup_"

// backup copies files from root into a new backup folder inside root, and
// returns the folder path. Errors match ErrBackupFailed.
func backup(root string, files []string, now time.Time) (string, error) {
	base := filepath.Join(root, fmt.Sprintf("%s%d", BackupPrefix, now.Unix()))
	dir := base
	for i := 1; ; i++ {
		err := os.Mkdir(dir, 0755)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: cannot create backup folder %q: %w", ErrBackupFailed, dir, err)
		}
		dir = fmt.Sprintf("%s_%d", base, i)
	}
	log.Printf("create-backup-folder name=%q", dir)

	for _, name := range files {
		src, dst := filepath.Join(root, name), filepath.Join(dir, name)
		if err := copyFile(src, dst); err != nil {
			return dir, fmt.Errorf("%w: %w", ErrBackupFailed, err)
		}
		log.Printf("backup-file name=%q", dst)
	}
	return dir, nil
}

// copyFile copies src content into a new dst file, keeping mode and
// modification time.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("cannot open %q: %w", src, err)
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("cannot stat %q: %w", src, err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("cannot create %q: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("cannot copy %q to %q: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("cannot close %q: %w", dst, err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("cannot set times of %q: %w", dst, err)
	}
	return nil
}
