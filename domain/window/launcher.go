package window

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
)

var ErrGameNotFound = errors.New("window: game executable not found")

// programDirs are searched breadth-first on every fixed drive after the
// drive root itself.
var programDirs = []string{"Program Files", "Program Files (x86)", "Games"}

// Launcher resolves the game executable and starts it.
type Launcher struct {
	InstallFolder string // e.g. "Genshin Impact"
	GameSubdir    string // e.g. "Genshin Impact Game"
	ExeName       string // e.g. "YuanShen.exe"
	MaxDepth      int

	// GamePath returns a user-chosen executable path, or "".
	GamePath func() string
	Drives   func() []string
	OpenFS   func(root string) fs.FS
	// Hidden reports hidden or system entries; path is the full OS path.
	Hidden func(path string) bool
	Start  func(exe, dir string) error
	Exists func(path string) bool

	Logger *slog.Logger
}

// NewLauncher returns a launcher using the platform drive list, file system
// and process start.
func NewLauncher(installFolder, gameSubdir, exeName string, maxDepth int, gamePath func() string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if gamePath == nil {
		gamePath = func() string { return "" }
	}
	return &Launcher{
		InstallFolder: installFolder,
		GameSubdir:    gameSubdir,
		ExeName:       exeName,
		MaxDepth:      maxDepth,
		GamePath:      gamePath,
		Drives:        fixedDrives,
		OpenFS:        os.DirFS,
		Hidden:        isHiddenOrSystem,
		Start:         startDetached,
		Exists:        fileExists,
		Logger:        logger,
	}
}

// Resolve returns the executable to start: the user game path when it exists,
// otherwise the result of the drive scan.
func (l *Launcher) Resolve() (string, error) {
	if p := strings.TrimSpace(l.GamePath()); p != "" {
		if l.Exists(p) {
			l.Logger.Debug("using configured game path", "path", p)
			return p, nil
		}
		l.Logger.Warn("configured game path does not exist, scanning drives", "path", p)
	}
	for _, drive := range l.Drives() {
		rel, ok := FindInstallDir(l.OpenFS(drive), l.InstallFolder, l.MaxDepth, func(rel string) bool {
			return l.Hidden(filepath.Join(drive, filepath.FromSlash(rel)))
		})
		if !ok {
			continue
		}
		exe := filepath.Join(drive, filepath.FromSlash(rel), l.GameSubdir, l.ExeName)
		l.Logger.Info("install folder found", "folder", filepath.Join(drive, filepath.FromSlash(rel)))
		return exe, nil
	}
	return "", ErrGameNotFound
}

// Launch resolves the executable and starts it with its own directory as the
// working directory.
func (l *Launcher) Launch() error {
	exe, err := l.Resolve()
	if err != nil {
		return err
	}
	if !l.Exists(exe) {
		return fmt.Errorf("%w: %s", ErrGameNotFound, exe)
	}
	l.Logger.Info("starting game", "exe", exe)
	return l.Start(exe, filepath.Dir(exe))
}

// FindInstallDir searches fsys (a drive root) for the install folder. Top-level
// directories whose name contains folder win first. Then the program
// directories are walked breadth-first, up to maxDepth levels below each, for
// a directory whose name ends with folder (case-insensitive). Directories
// whose name contains "Windows" or "$", and those reported by hidden, are not
// entered. The returned path is slash-separated and relative to fsys.
func FindInstallDir(fsys fs.FS, folder string, maxDepth int, hidden func(rel string) bool) (string, bool) {
	if folder == "" {
		return "", false
	}
	if hidden == nil {
		hidden = func(string) bool { return false }
	}
	roots, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return "", false
	}
	for _, e := range roots {
		if e.IsDir() && strings.Contains(e.Name(), folder) {
			return e.Name(), true
		}
	}
	suffix := strings.ToLower(folder)
	type node struct {
		path  string
		depth int
	}
	for _, pd := range programDirs {
		if st, err := fs.Stat(fsys, pd); err != nil || !st.IsDir() {
			continue
		}
		queue := []node{{path: pd}}
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			entries, err := fs.ReadDir(fsys, n.path)
			if err != nil {
				continue
			}
			for _, e := range entries {
				if e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), suffix) {
					return path.Join(n.path, e.Name()), true
				}
			}
			if n.depth >= maxDepth {
				continue
			}
			for _, e := range entries {
				if !e.IsDir() || skipDir(e.Name()) {
					continue
				}
				child := path.Join(n.path, e.Name())
				if hidden(child) {
					continue
				}
				queue = append(queue, node{path: child, depth: n.depth + 1})
			}
		}
	}
	return "", false
}

func skipDir(name string) bool {
	return strings.Contains(name, "Windows") || strings.Contains(name, "$")
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

func startDetached(exe, dir string) error {
	cmd := exec.Command(exe)
	cmd.Dir = dir
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("window: start %s: %w", exe, err)
	}
	return cmd.Process.Release()
}
