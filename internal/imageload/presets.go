package imageload

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrPresetNotFound = errors.New("preset not found")

type Preset struct {
	Name string `json:"name"`
	Path string `json:"-"`
}

// Catalog is a list of named preset images read from a text file with one
// "name: path" entry per line. Relative paths resolve against the file's
// directory.
type Catalog struct {
	presets map[string]Preset
}

func NewCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Catalog{presets: map[string]Preset{}}, nil
		}
		return nil, err
	}
	defer f.Close()

	dir := filepath.Dir(path)
	presets := map[string]Preset{}
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		name := strings.TrimSpace(parts[0])
		p := strings.TrimSpace(parts[1])
		if name == "" || p == "" {
			continue
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		presets[strings.ToLower(name)] = Preset{Name: name, Path: p}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	return &Catalog{presets: presets}, nil
}

func (c *Catalog) List() []Preset {
	out := make([]Preset, 0, len(c.presets))
	for _, p := range c.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (c *Catalog) Find(name string) (Preset, error) {
	p, ok := c.presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Preset{}, ErrPresetNotFound
	}
	return p, nil
}
