package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Loader discovers plugins in a directory tree.
type Loader struct {
	root       string
	discovered map[string]*Info
}

// Info is discovery information about one plugin.
type Info struct {
	Name     string
	Path     string
	Manifest *Manifest
	Err      error
}

// NewLoader creates a loader rooted at the given plugins directory.
func NewLoader(root string) *Loader {
	return &Loader{
		root:       root,
		discovered: make(map[string]*Info),
	}
}

// Root returns the plugins directory.
func (l *Loader) Root() string {
	return l.root
}

// Discover finds all plugins under the root, sorted by name. A plugin is
// either a directory carrying plugin.toml or init.lua, or a bare .lua file.
// A missing root is not an error.
func (l *Loader) Discover() ([]*Info, error) {
	l.discovered = make(map[string]*Info)

	entries, err := os.ReadDir(l.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading plugin dir: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			if filepath.Ext(entry.Name()) == ".lua" {
				name := strings.TrimSuffix(entry.Name(), ".lua")
				l.addSingleFile(name, entry.Name())
			}
			continue
		}
		info := l.inspect(entry.Name(), filepath.Join(l.root, entry.Name()))
		if _, exists := l.discovered[info.Name]; !exists {
			l.discovered[info.Name] = info
		}
	}

	infos := make([]*Info, 0, len(l.discovered))
	for _, info := range l.discovered {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos, nil
}

func (l *Loader) addSingleFile(name, file string) {
	if _, exists := l.discovered[name]; exists {
		return
	}
	manifest := NewManifestMinimal(name, l.root)
	manifest.Entry = file
	l.discovered[name] = &Info{
		Name:     name,
		Path:     l.root,
		Manifest: manifest,
	}
}

func (l *Loader) inspect(name, path string) *Info {
	info := &Info{Name: name, Path: path}

	manifestPath := filepath.Join(path, ManifestFile)
	if _, err := os.Stat(manifestPath); err == nil {
		manifest, err := LoadManifest(manifestPath)
		if err != nil {
			info.Err = err
			return info
		}
		info.Manifest = manifest
		info.Name = manifest.Name
		return info
	}

	if _, err := os.Stat(filepath.Join(path, "init.lua")); err == nil {
		info.Manifest = NewManifestMinimal(name, path)
		return info
	}

	info.Err = ErrNoEntryPoint
	return info
}

// Get returns info for a discovered plugin by name.
func (l *Loader) Get(name string) (*Info, bool) {
	info, ok := l.discovered[name]
	return info, ok
}

// Names returns the names of all discovered plugins, sorted.
func (l *Loader) Names() []string {
	names := make([]string, 0, len(l.discovered))
	for name := range l.discovered {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
