package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Folder names inside the workspace root.
const (
	FolderCM          = "Central Management"
	FolderSTAP        = "STAP status"
	FolderAggregation = "Aggregation Processes"
	FolderQuality     = "Collection Quality"
	FolderOutput      = "output"
)

var baseFolders = []string{FolderCM, FolderSTAP, FolderAggregation, FolderQuality}

// Workspace is the on-disk working directory the input spreadsheets are
// dropped into. All access goes through an afero filesystem so the layout can
// be exercised in memory.
type Workspace struct {
	fs   afero.Fs
	root string
}

// NewWorkspace wraps a workspace root on the given filesystem.
func NewWorkspace(fsys afero.Fs, root string) *Workspace {
	return &Workspace{fs: fsys, root: root}
}

// FS returns the underlying filesystem.
func (w *Workspace) FS() afero.Fs { return w.fs }

// Root returns the workspace root path.
func (w *Workspace) Root() string { return w.root }

// Init creates the base folder structure. Existing folders are left alone.
func (w *Workspace) Init() error {
	for _, sub := range baseFolders {
		if err := w.fs.MkdirAll(filepath.Join(w.root, sub), 0755); err != nil {
			return fmt.Errorf("create workspace folder %s: %w", sub, err)
		}
	}
	return nil
}

// InitCollectors creates per-collector subfolders for activity and quality
// logs once the inventory is known.
func (w *Workspace) InitCollectors(collectors []string) error {
	for _, c := range collectors {
		for _, sub := range []string{FolderAggregation, FolderQuality} {
			if err := w.fs.MkdirAll(filepath.Join(w.root, sub, c), 0755); err != nil {
				return fmt.Errorf("create collector folder %s/%s: %w", sub, c, err)
			}
		}
	}
	return nil
}

// CleanPreviousRun removes files left over from earlier runs. Collector
// subfolders themselves are kept; only their contents go.
func (w *Workspace) CleanPreviousRun() error {
	for _, sub := range []string{FolderCM, FolderSTAP} {
		if err := w.removeFilesIn(filepath.Join(w.root, sub), false); err != nil {
			return err
		}
	}
	for _, sub := range []string{FolderAggregation, FolderQuality} {
		if err := w.removeFilesIn(filepath.Join(w.root, sub), true); err != nil {
			return err
		}
	}
	return nil
}

func (w *Workspace) removeFilesIn(dir string, recursive bool) error {
	entries, err := afero.ReadDir(w.fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read workspace folder %s: %w", dir, err)
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if recursive {
				if err := w.removeFilesIn(path, false); err != nil {
					return err
				}
			}
			continue
		}
		if err := w.fs.Remove(path); err != nil {
			return fmt.Errorf("remove stale file %s: %w", path, err)
		}
	}
	return nil
}

// InventoryFiles lists the central inventory spreadsheets.
func (w *Workspace) InventoryFiles() ([]string, error) {
	return w.listTables(filepath.Join(w.root, FolderCM))
}

// AgentStatusFiles lists the STAP status spreadsheets.
func (w *Workspace) AgentStatusFiles() ([]string, error) {
	return w.listTables(filepath.Join(w.root, FolderSTAP))
}

// ActivityFiles lists the activity-log spreadsheets for one collector. A
// missing collector folder is not an error; it simply has no logs yet.
func (w *Workspace) ActivityFiles(collector string) ([]string, error) {
	return w.listTables(filepath.Join(w.root, FolderAggregation, collector))
}

// OutputPath resolves an artifact name inside the output folder. Absolute
// names are returned as-is.
func (w *Workspace) OutputPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(w.root, FolderOutput, name)
}

// EnsureOutputDir creates the output folder.
func (w *Workspace) EnsureOutputDir() error {
	return w.fs.MkdirAll(filepath.Join(w.root, FolderOutput), 0755)
}

// listTables returns readable table files in a folder, in name order.
func (w *Workspace) listTables(dir string) ([]string, error) {
	entries, err := afero.ReadDir(w.fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read workspace folder %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if SupportedTable(path) {
			files = append(files, path)
		}
	}
	return files, nil
}
