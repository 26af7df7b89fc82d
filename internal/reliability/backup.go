// Package reliability keeps the file-backed data safe: scheduled
// snapshots of the backing files with bounded retention.
package reliability

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/olufemi424/agentic-ui/internal/events"
)

// BackupInfo describes one completed snapshot directory.
type BackupInfo struct {
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"sizeBytes"`
	Files     []string  `json:"files"`
}

// BackupService snapshots the backing files into timestamped
// directories under <dataDir>/backups and prunes old snapshots.
type BackupService struct {
	mu        sync.Mutex
	dataDir   string
	sources   []string
	retain    int
	bus       *events.Bus
	scheduler *cron.Cron
	log       zerolog.Logger
}

// NewBackupService creates a backup service over the given source
// files. retain bounds how many snapshots are kept; values below one
// fall back to one.
func NewBackupService(dataDir string, sources []string, retain int, bus *events.Bus, log zerolog.Logger) *BackupService {
	if retain < 1 {
		retain = 1
	}
	return &BackupService{
		dataDir: dataDir,
		sources: sources,
		retain:  retain,
		bus:     bus,
		log:     log.With().Str("service", "backup").Logger(),
	}
}

// Start registers the cron schedule and begins running snapshots.
func (s *BackupService) Start(spec string) error {
	if s.scheduler != nil {
		return fmt.Errorf("backup scheduler already started")
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if _, err := s.RunBackup(); err != nil {
			s.log.Error().Err(err).Msg("Scheduled backup failed")
			if s.bus != nil {
				s.bus.PublishError("reliability", err)
			}
		}
	}); err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", spec, err)
	}
	c.Start()
	s.scheduler = c
	s.log.Info().Str("schedule", spec).Int("retain", s.retain).Msg("Backup scheduler started")
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *BackupService) Stop() {
	if s.scheduler != nil {
		ctx := s.scheduler.Stop()
		<-ctx.Done()
		s.scheduler = nil
	}
}

// RunBackup takes one snapshot now. Source files that do not exist yet
// are skipped; a snapshot with no files is an error.
func (s *BackupService) RunBackup() (*BackupInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := time.Now().UTC()
	name := fmt.Sprintf("%s-%s", started.Format("20060102T150405"), uuid.NewString()[:8])
	dir := filepath.Join(s.backupRoot(), name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	info := &BackupInfo{Name: name, Timestamp: started}
	for _, src := range s.sources {
		size, err := copyFile(src, filepath.Join(dir, filepath.Base(src)))
		if os.IsNotExist(err) {
			s.log.Debug().Str("file", src).Msg("Skipping missing source file")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to back up %s: %w", src, err)
		}
		info.Files = append(info.Files, filepath.Base(src))
		info.SizeBytes += size
	}
	if len(info.Files) == 0 {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("no source files available to back up")
	}

	if err := s.prune(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to prune old backups")
	}

	s.log.Info().
		Str("backup", name).
		Int("files", len(info.Files)).
		Int64("bytes", info.SizeBytes).
		Dur("duration", time.Since(started)).
		Msg("Backup completed")

	if s.bus != nil {
		s.bus.Publish(events.BackupCompleted, "reliability", map[string]interface{}{
			"name":  info.Name,
			"files": info.Files,
			"bytes": info.SizeBytes,
		})
	}
	return info, nil
}

// List returns completed snapshots, newest first.
func (s *BackupService) List() ([]BackupInfo, error) {
	entries, err := os.ReadDir(s.backupRoot())
	if os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := make([]BackupInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info := BackupInfo{Name: entry.Name()}
		if ts, ok := parseBackupName(entry.Name()); ok {
			info.Timestamp = ts
		}
		files, _ := os.ReadDir(filepath.Join(s.backupRoot(), entry.Name()))
		for _, f := range files {
			info.Files = append(info.Files, f.Name())
			if fi, err := f.Info(); err == nil {
				info.SizeBytes += fi.Size()
			}
		}
		backups = append(backups, info)
	}
	sort.Slice(backups, func(i, j int) bool { return backups[i].Name > backups[j].Name })
	return backups, nil
}

func (s *BackupService) backupRoot() string {
	return filepath.Join(s.dataDir, "backups")
}

// prune removes the oldest snapshots beyond the retention bound. Names
// sort chronologically because they start with the timestamp.
func (s *BackupService) prune() error {
	entries, err := os.ReadDir(s.backupRoot())
	if err != nil {
		return err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	if len(names) <= s.retain {
		return nil
	}
	sort.Strings(names)
	for _, name := range names[:len(names)-s.retain] {
		if err := os.RemoveAll(filepath.Join(s.backupRoot(), name)); err != nil {
			return err
		}
		s.log.Debug().Str("backup", name).Msg("Pruned old backup")
	}
	return nil
}

func parseBackupName(name string) (time.Time, bool) {
	stamp, _, found := strings.Cut(name, "-")
	if !found {
		return time.Time{}, false
	}
	ts, err := time.Parse("20060102T150405", stamp)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return 0, err
	}
	return n, out.Close()
}
