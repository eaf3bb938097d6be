package profile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"
)

// Load reads the profile database from disk. A missing or whitespace-only
// file yields the default database. A schema version other than the compiled
// one also yields the default database, but the old file is preserved as a
// compressed backup next to the original before being discarded, so a
// downgrade or future migration can recover it.
func Load(path string) (DB, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return DB{}, fmt.Errorf("read profile db: %w", err)
	}
	if strings.TrimSpace(string(content)) == "" {
		return Default(), nil
	}

	var db DB
	if err := json.Unmarshal(content, &db); err != nil {
		return DB{}, fmt.Errorf("parse profile db: %w", err)
	}

	if db.SchemaVersion != SchemaVersion {
		logrus.WithFields(logrus.Fields{
			"path":  path,
			"found": db.SchemaVersion,
			"want":  SchemaVersion,
		}).Warn("profile db schema mismatch, resetting to default")
		if backupPath, err := writeBackup(path, content); err != nil {
			logrus.WithError(err).Warn("failed to back up old profile db")
		} else {
			logrus.WithField("backup", backupPath).Info("old profile db backed up")
		}
		return Default(), nil
	}

	if db.Bindings == nil {
		db.Bindings = make(map[string]string)
	}
	return db, nil
}

// Save writes the database to disk, stamping the current schema version.
func Save(path string, db DB) error {
	db.SchemaVersion = SchemaVersion
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize profile db: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write profile db: %w", err)
	}
	return nil
}

// writeBackup stores the raw bytes of a rejected database file as a
// timestamped zstd archive beside the original and returns the backup path.
func writeBackup(path string, content []byte) (string, error) {
	backupPath := fmt.Sprintf("%s.%s.zst", path, time.Now().UTC().Format("20060102T150405Z"))

	f, err := os.Create(backupPath)
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f)
	if err != nil {
		return "", fmt.Errorf("create zstd writer: %w", err)
	}
	if _, err := enc.Write(content); err != nil {
		enc.Close()
		return "", fmt.Errorf("write backup: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("flush backup: %w", err)
	}
	return backupPath, nil
}

// ReadBackup decompresses a backup written by writeBackup, for recovery
// tooling.
func ReadBackup(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer dec.Close()

	out, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decompress backup: %w", err)
	}
	return out, nil
}
