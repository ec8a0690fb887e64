package plugin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/SatinCake/skymp/internal/scripting"
)

// ManifestFile is the manifest filename inside a plugin directory.
const ManifestFile = "plugin.toml"

// Manifest describes a plugin's metadata and requirements.
type Manifest struct {
	// Identity
	Name        string `toml:"name"`
	Version     string `toml:"version"`
	Description string `toml:"description"`
	Author      string `toml:"author"`

	// Entry is the relative path to the main Lua file (default "init.lua").
	Entry string `toml:"entry"`

	// Capabilities requested from the scripting sandbox.
	Capabilities []scripting.Capability `toml:"capabilities"`

	// path is the plugin directory, set at load time.
	path string
}

// Manifest validation errors.
var (
	ErrMissingName       = errors.New("manifest: name is required")
	ErrInvalidName       = errors.New("manifest: name must be lowercase alphanumeric with hyphens")
	ErrInvalidVersion    = errors.New("manifest: version must be valid semver")
	ErrInvalidEntry      = errors.New("manifest: entry must be a .lua file")
	ErrInvalidCapability = errors.New("manifest: invalid capability")
)

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$|^[a-z]$`)

var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9.-]+)?(\+[a-zA-Z0-9.-]+)?$`)

var validCapabilities = map[scripting.Capability]bool{
	scripting.CapabilityOS:     true,
	scripting.CapabilityIO:     true,
	scripting.CapabilityUnsafe: true,
}

// LoadManifest loads and validates a manifest from a TOML file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	m.path = filepath.Dir(path)
	m.applyDefaults()

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// NewManifestMinimal creates a manifest for a single-file plugin.
func NewManifestMinimal(name, dir string) *Manifest {
	return &Manifest{
		Name:    name,
		Version: "0.0.0",
		Entry:   "init.lua",
		path:    dir,
	}
}

func (m *Manifest) applyDefaults() {
	if m.Entry == "" {
		m.Entry = "init.lua"
	}
	if m.Version == "" {
		m.Version = "0.0.0"
	}
}

// Validate checks that the manifest is well-formed.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return ErrMissingName
	}
	if !namePattern.MatchString(m.Name) {
		return fmt.Errorf("%w: %s", ErrInvalidName, m.Name)
	}
	if !semverPattern.MatchString(m.Version) {
		return fmt.Errorf("%w: %s", ErrInvalidVersion, m.Version)
	}
	if filepath.Ext(m.Entry) != ".lua" {
		return fmt.Errorf("%w: %s", ErrInvalidEntry, m.Entry)
	}
	for _, cap := range m.Capabilities {
		if !validCapabilities[cap] {
			return fmt.Errorf("%w: %s", ErrInvalidCapability, cap)
		}
	}
	return nil
}

// Path returns the plugin directory.
func (m *Manifest) Path() string {
	return m.path
}

// EntryPath returns the full path to the main Lua file.
func (m *Manifest) EntryPath() string {
	return filepath.Join(m.path, m.Entry)
}

// String returns "name vVersion".
func (m *Manifest) String() string {
	return fmt.Sprintf("%s v%s", m.Name, m.Version)
}
