package ocr

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Built-in profile ids used by the coordinator's two OCR slots
const (
	ProfileFast     = "fast"
	ProfileAccurate = "accurate"
)

// Profile is a named language/model configuration for the OCR engine
type Profile struct {
	ID       string `yaml:"id"`
	Language string `yaml:"language"`
	Model    string `yaml:"model,omitempty"`    // model file name or path; defaults to <language>.traineddata
	Fallback string `yaml:"fallback,omitempty"` // language retried when the primary fails to initialize
	DataDir  string `yaml:"data_dir,omitempty"` // explicit directory override for this profile
}

// CanonicalModel is the file name tesseract looks for
func (p Profile) CanonicalModel() string {
	return p.Language + ".traineddata"
}

// ModelFile returns the configured model file, or the canonical name
func (p Profile) ModelFile() string {
	if p.Model == "" {
		return p.CanonicalModel()
	}
	return p.Model
}

// NeedsAlias reports whether the model must be staged under the canonical name
func (p Profile) NeedsAlias() bool {
	return filepath.Base(p.ModelFile()) != p.CanonicalModel()
}

// FallbackProfile returns the profile used when the primary language fails
func (p Profile) FallbackProfile() (Profile, bool) {
	if p.Fallback == "" || p.Fallback == p.Language {
		return Profile{}, false
	}
	return Profile{ID: p.ID + "-" + p.Fallback, Language: p.Fallback, DataDir: p.DataDir}, true
}

// Validate checks required fields
func (p Profile) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("profile id cannot be empty")
	}
	if p.Language == "" {
		return fmt.Errorf("profile %s: language cannot be empty", p.ID)
	}
	if strings.ContainsAny(p.ID, `/\:`) {
		return fmt.Errorf("profile %s: id must not contain path separators", p.ID)
	}
	return nil
}

// DefaultProfiles returns the built-in fast and accurate profiles. The
// accurate model is the tessdata_best file kept next to the fast one under
// a distinct name, so it is staged through an alias.
func DefaultProfiles() []Profile {
	return []Profile{
		{ID: ProfileFast, Language: "chi_sim", Fallback: "eng"},
		{ID: ProfileAccurate, Language: "chi_sim", Model: "chi_sim_best.traineddata", Fallback: "eng"},
	}
}

// ProfileFile represents the structure of a profiles YAML file
type ProfileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// ProfileRegistry holds the known OCR profiles by id
type ProfileRegistry struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewProfileRegistry creates a registry seeded with the built-in profiles
func NewProfileRegistry() *ProfileRegistry {
	r := &ProfileRegistry{profiles: make(map[string]Profile)}
	for _, p := range DefaultProfiles() {
		r.profiles[p.ID] = p
	}
	return r
}

// LoadFromFile loads profiles from a YAML file; entries override built-ins by id
func (r *ProfileRegistry) LoadFromFile(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read profile file %s: %w", filePath, err)
	}

	var file ProfileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to unmarshal profile YAML: %w", err)
	}

	for i, p := range file.Profiles {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("profile %d: %w", i+1, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range file.Profiles {
		r.profiles[p.ID] = p
	}
	return nil
}

// Register adds a profile programmatically
func (r *ProfileRegistry) Register(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.ID] = p
	return nil
}

// Get retrieves a profile by id
func (r *ProfileRegistry) Get(id string) (Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	return p, ok
}

// MustGet retrieves a profile by id and panics if not found.
// Use only for the built-in ids, which are always registered.
func (r *ProfileRegistry) MustGet(id string) Profile {
	p, ok := r.Get(id)
	if !ok {
		panic(fmt.Sprintf("profile '%s' not found in registry", id))
	}
	return p
}

// List returns all profiles sorted by id
func (r *ProfileRegistry) List() []Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
