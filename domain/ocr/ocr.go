// Package ocr turns captured screen regions into cleaned label text.
//
// The Service owns language-data discovery and a one-time initialisation
// guarded by a mutex. Recognition builds a fresh Engine per call, so
// concurrent Recognize calls from the region fan-out do not share engine
// state.
package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// DefaultLanguage is the only language pack the login flow needs.
const DefaultLanguage = "chi_sim"

var (
	ErrNotInitialized      = errors.New("ocr: not initialized")
	ErrLanguageDataMissing = errors.New("ocr: language data not found")
	errEngineUnavailable   = errors.New("ocr: no engine factory")
)

// Engine recognises a single PNG-encoded image.
type Engine interface {
	Text(png []byte) (string, error)
	Close() error
}

// EngineFactory creates an engine bound to a tessdata directory and language.
type EngineFactory func(dataPath, lang string) (Engine, error)

// Service is the process-wide text recognizer.
type Service struct {
	factory    EngineFactory
	lang       string
	candidates func() []string
	logger     *slog.Logger

	mu        sync.Mutex
	ready     bool
	attempted bool
	dataPath  string
}

// NewService returns an uninitialised service. lang defaults to chi_sim.
func NewService(factory EngineFactory, lang string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if lang == "" {
		lang = DefaultLanguage
	}
	return &Service{factory: factory, lang: lang, candidates: CandidatePaths, logger: logger}
}

// CandidatePaths lists tessdata directories in lookup order.
func CandidatePaths() []string {
	var exeDir string
	if exe, err := os.Executable(); err == nil {
		exeDir = filepath.Dir(exe)
	}
	cwd, _ := os.Getwd()
	var paths []string
	if exeDir != "" {
		paths = append(paths, filepath.Join(exeDir, "tessdata"))
	}
	if cwd != "" {
		paths = append(paths, filepath.Join(cwd, "tessdata"))
	}
	if exeDir != "" {
		paths = append(paths,
			filepath.Join(exeDir, "..", "tessdata"),
			filepath.Join(exeDir, "..", "..", "tessdata"),
		)
	}
	return append(paths,
		`C:\Program Files\Tesseract-OCR\tessdata`,
		`C:\Program Files (x86)\Tesseract-OCR\tessdata`,
	)
}

// Initialize locates the language data and marks the service ready. A
// non-empty dataPath is used instead of the candidate list. Safe to call
// repeatedly and concurrently.
func (s *Service) Initialize(dataPath string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initLocked(dataPath)
}

func (s *Service) initLocked(dataPath string) bool {
	if s.ready {
		return true
	}
	s.attempted = true
	path, err := s.locate(dataPath)
	if err != nil {
		s.logger.Warn("ocr init failed", "error", err)
		return false
	}
	s.dataPath = path
	s.ready = true
	s.logger.Info("ocr initialized", "tessdata", path, "lang", s.lang)
	return true
}

func (s *Service) locate(custom string) (string, error) {
	if custom != "" {
		if err := hasLanguage(custom, s.lang); err != nil {
			return "", err
		}
		return filepath.Abs(custom)
	}
	for _, p := range s.candidates() {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		if hasLanguage(abs, s.lang) == nil {
			return abs, nil
		}
	}
	return "", fmt.Errorf("%w: no candidate directory contains %s.traineddata", ErrLanguageDataMissing, s.lang)
}

func hasLanguage(dir, lang string) error {
	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		return fmt.Errorf("%w: tessdata directory %q not found", ErrLanguageDataMissing, dir)
	}
	file := filepath.Join(dir, lang+".traineddata")
	if _, err := os.Stat(file); err != nil {
		return fmt.Errorf("%w: %s", ErrLanguageDataMissing, file)
	}
	return nil
}

// Ready reports whether Initialize has succeeded.
func (s *Service) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// DataPath returns the resolved tessdata directory, or "" before init.
func (s *Service) DataPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dataPath
}

// Recognize runs OCR with the service language. It never fails: a nil image,
// an unavailable engine or any engine error yields "".
func (s *Service) Recognize(img image.Image) string {
	return s.RecognizeLang(img, s.lang)
}

// RecognizeLang is Recognize with an explicit language.
func (s *Service) RecognizeLang(img image.Image, lang string) string {
	if img == nil {
		return ""
	}
	text, err := s.recognize(img, lang)
	if err != nil {
		s.logger.Debug("ocr recognize failed", "error", err)
		return ""
	}
	return Clean(text)
}

func (s *Service) recognize(img image.Image, lang string) (text string, err error) {
	dataPath, err := s.ensureReady()
	if err != nil {
		return "", err
	}
	if s.factory == nil {
		return "", errEngineUnavailable
	}
	if lang == "" {
		lang = s.lang
	}
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("ocr: engine panic: %v", r)
		}
	}()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("ocr: encode: %w", err)
	}
	eng, err := s.factory(dataPath, lang)
	if err != nil {
		return "", fmt.Errorf("ocr: engine: %w", err)
	}
	defer eng.Close()
	return eng.Text(buf.Bytes())
}

// ensureReady performs the lazy one-time initialisation attempt. The check
// and the attempt happen under one lock, so concurrent first callers run a
// single lookup.
func (s *Service) ensureReady() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return s.dataPath, nil
	}
	if s.attempted || !s.initLocked("") {
		return "", ErrNotInitialized
	}
	return s.dataPath, nil
}
