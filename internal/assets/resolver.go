package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"jordanella.com/hshj-locator/internal/cv"
	apperrors "jordanella.com/hshj-locator/internal/errors"
	"jordanella.com/hshj-locator/internal/logging"
	"jordanella.com/hshj-locator/internal/ocr"
)

// DefaultTemplateName is the reference icon file
const DefaultTemplateName = "hshj.png"

// Options configures where assets are searched
type Options struct {
	AppDir       string // defaults to the executable's directory
	TemplatePath string // explicit template file
	TemplateName string // file name searched in conventional dirs
	TessdataDir  string // explicit model directory
	ModelDirs    []string
}

// Resolver locates the template image and OCR model files on disk
type Resolver struct {
	opts   Options
	logger *logging.Logger
}

// NewResolver creates a resolver
func NewResolver(opts Options, logger *logging.Logger) *Resolver {
	if opts.AppDir == "" {
		opts.AppDir = AppDir()
	}
	if opts.TemplateName == "" {
		opts.TemplateName = DefaultTemplateName
	}
	if opts.ModelDirs == nil {
		opts.ModelDirs = DefaultModelDirs()
	}
	return &Resolver{opts: opts, logger: logger}
}

// AppDir returns the directory holding the running executable, falling
// back to the working directory.
func AppDir() string {
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// DefaultModelDirs lists packaged tessdata locations, newest first
func DefaultModelDirs() []string {
	if runtime.GOOS == "windows" {
		return []string{
			`C:\Program Files\Tesseract-OCR\tessdata`,
			`C:\Program Files (x86)\Tesseract-OCR\tessdata`,
			`%LOCALAPPDATA%\Programs\Tesseract-OCR\tessdata`,
		}
	}
	return []string{
		"/usr/share/tesseract-ocr/5/tessdata",
		"/usr/share/tesseract-ocr/4.00/tessdata",
		"/usr/share/tessdata",
		"/usr/local/share/tessdata",
		"/opt/homebrew/share/tessdata",
	}
}

// TemplateCandidates returns the template search order
func (r *Resolver) TemplateCandidates() []string {
	var paths []string
	if r.opts.TemplatePath != "" {
		paths = append(paths, r.opts.TemplatePath)
	}
	paths = append(paths,
		filepath.Join(r.opts.AppDir, "assets", r.opts.TemplateName),
		filepath.Join(r.opts.AppDir, r.opts.TemplateName),
	)
	if wd, err := os.Getwd(); err == nil && wd != r.opts.AppDir {
		paths = append(paths, filepath.Join(wd, "assets", r.opts.TemplateName))
	}
	return paths
}

// LoadTemplateImage decodes the first template found
func (r *Resolver) LoadTemplateImage() (*cv.TemplateImage, error) {
	candidates := r.TemplateCandidates()
	path, ok := firstExisting(candidates)
	if !ok {
		return nil, apperrors.NewAssetNotFoundError(r.opts.TemplateName, candidates)
	}

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode template %s: %w", path, err)
	}

	tmpl, err := cv.NewTemplateImage(filepath.Base(path), img)
	if err != nil {
		return nil, err
	}

	r.logger.Infof("Loaded template %s (%dx%d, alpha=%v)", path, tmpl.Width(), tmpl.Height(), tmpl.HasAlpha())
	return tmpl, nil
}

// ModelCandidates returns where the profile's model file is searched:
// explicit overrides, then application-relative dirs, then packaged defaults.
func (r *Resolver) ModelCandidates(profile ocr.Profile) []string {
	model := profile.ModelFile()
	if filepath.IsAbs(model) {
		return []string{model}
	}

	var dirs []string
	if profile.DataDir != "" {
		dirs = append(dirs, profile.DataDir)
	}
	if r.opts.TessdataDir != "" {
		dirs = append(dirs, r.opts.TessdataDir)
	}
	if prefix := os.Getenv("TESSDATA_PREFIX"); prefix != "" {
		dirs = append(dirs, prefix, filepath.Join(prefix, "tessdata"))
	}
	dirs = append(dirs,
		filepath.Join(r.opts.AppDir, "tessdata"),
		filepath.Join(r.opts.AppDir, "assets", "tessdata"),
	)
	dirs = append(dirs, r.opts.ModelDirs...)

	paths := make([]string, 0, len(dirs))
	seen := make(map[string]bool)
	for _, dir := range dirs {
		p := filepath.Join(os.ExpandEnv(dir), model)
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	return paths
}

// ResolveModelPath returns the first existing model file for profile
func (r *Resolver) ResolveModelPath(profile ocr.Profile) (string, error) {
	candidates := r.ModelCandidates(profile)
	path, ok := firstExisting(candidates)
	if !ok {
		return "", apperrors.NewAssetNotFoundError(profile.ModelFile(), candidates)
	}
	r.logger.Debugf("Profile %s uses model %s", profile.ID, path)
	return path, nil
}

func firstExisting(paths []string) (string, bool) {
	for _, p := range paths {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, true
		}
	}
	return "", false
}
