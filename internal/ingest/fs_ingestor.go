package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/invoice-tracker/constants"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
)

// FSScanner reads from the local filesystem.
type FSScanner struct {
	logger *slog.Logger
}

func NewFSScanner(logger *slog.Logger) *FSScanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSScanner{logger: logger}
}

func (s *FSScanner) ScanPath(ctx context.Context, path string) (Document, error) {
	var out Document
	if err := ctx.Err(); err != nil {
		return out, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		s.logger.Error("abs path error", "path", path, "error", err)
		return out, err
	}

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext) {
		s.logger.Debug("unsupported or missing extension", "path", abs, "ext", ext)
		return out, fmt.Errorf("%w: unsupported or missing extension %q", common.ErrInvalidInput, ext)
	}

	f, err := os.Open(abs)
	if err != nil {
		s.logger.Error("open error", "path", abs, "error", err)
		return out, err
	}
	defer func(f *os.File) {
		if err := f.Close(); err != nil {
			s.logger.Warn("close file error", "path", abs, "error", err)
		}
	}(f)

	info, err := f.Stat()
	if err != nil {
		return out, err
	}
	if info.IsDir() {
		return out, fmt.Errorf("%w: %s is a directory", common.ErrInvalidInput, abs)
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		s.logger.Error("hash error", "path", abs, "error", err)
		return out, err
	}

	return Document{
		SourcePath: abs,
		Filename:   filepath.Base(abs),
		FileExt:    ext,
		Size:       info.Size(),
		HashHex:    hex.EncodeToString(h.Sum(nil)),
		ModTime:    info.ModTime().UTC(),
	}, nil
}

// ScanDirectory walks root, skips hidden entries if requested, and calls ScanPath for
// each allowed file. Returns per-file results + aggregate stats. Documents whose content
// was already seen are kept and flagged Deduplicated.
func (s *FSScanner) ScanDirectory(ctx context.Context, root string, skipHidden bool) ([]Document, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, fmt.Errorf("%w: root path is required", common.ErrInvalidInput)
	}
	if info, err := os.Stat(root); err != nil {
		return nil, DirStats{}, err
	} else if !info.IsDir() {
		return nil, DirStats{}, fmt.Errorf("%w: %s is not a directory", common.ErrInvalidInput, root)
	}

	var results []Document
	var stats DirStats
	seen := map[string]string{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, Document{SourcePath: path, Filename: filepath.Base(path), Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		doc, err := s.ScanPath(ctx, path)
		if err != nil {
			results = append(results, Document{SourcePath: path, Filename: filepath.Base(path), Err: err.Error()})
			stats.Failed++
			return nil
		}
		if first, ok := seen[doc.HashHex]; ok {
			doc.Deduplicated = true
			stats.Deduplicated++
			s.logger.Debug("duplicate content", "path", doc.SourcePath, "first", first)
		} else {
			seen[doc.HashHex] = doc.SourcePath
		}
		results = append(results, doc)
		stats.Succeeded++
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return results, stats, err
		}
		return results, stats, fmt.Errorf("walk: %w", err)
	}

	s.logger.Info("directory scanned",
		"root", root,
		"matched", stats.Matched,
		"failed", stats.Failed,
		"deduplicated", stats.Deduplicated,
	)
	return results, stats, nil
}
