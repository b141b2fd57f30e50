package mapping

// SourceEntry is one remote source composed into a path's AGENTS.md. Name is
// a GitHub slug (owner/repo[/subpath]). Module additionally mirrors the whole
// remote directory under the path's module directory.
type SourceEntry struct {
	Name   string `yaml:"name"`
	Module bool   `yaml:"module"`
}

// PathMapping pairs a root-relative path key with its ordered sources.
type PathMapping struct {
	Path    string        `yaml:"path"`
	Sources []SourceEntry `yaml:"mds"`
}

// ModuleNames returns the names of the module-flagged sources, in order.
func (m PathMapping) ModuleNames() []string {
	var names []string
	for _, src := range m.Sources {
		if src.Module {
			names = append(names, src.Name)
		}
	}
	return names
}

// Set is the ordered collection of path mappings. Both path order and source
// order are significant: they determine the order of generated output.
type Set struct {
	mappings []PathMapping
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{}
}

// Len returns the number of configured paths.
func (s *Set) Len() int {
	return len(s.mappings)
}

// Mappings returns a copy of the mappings in configuration order.
func (s *Set) Mappings() []PathMapping {
	out := make([]PathMapping, len(s.mappings))
	for i, m := range s.mappings {
		out[i] = PathMapping{
			Path:    m.Path,
			Sources: append([]SourceEntry(nil), m.Sources...),
		}
	}
	return out
}

// Entries returns the sources configured for path, or nil if the path is not
// configured.
func (s *Set) Entries(path string) []SourceEntry {
	if i := s.index(path); i >= 0 {
		return append([]SourceEntry(nil), s.mappings[i].Sources...)
	}
	return nil
}

// Has reports whether path is configured.
func (s *Set) Has(path string) bool {
	return s.index(path) >= 0
}

// Put sets the sources for path. An existing path keeps its position;
// a new path is appended.
func (s *Set) Put(path string, sources []SourceEntry) {
	sources = append([]SourceEntry(nil), sources...)
	if i := s.index(path); i >= 0 {
		s.mappings[i].Sources = sources
		return
	}
	s.mappings = append(s.mappings, PathMapping{Path: path, Sources: sources})
}

// Add merges entry into path's sources and reports whether anything changed.
// A new name is appended. For a name already present the first match wins;
// the only update applied is promoting it to a module when entry.Module is set.
func (s *Set) Add(path string, entry SourceEntry) bool {
	i := s.index(path)
	if i < 0 {
		s.mappings = append(s.mappings, PathMapping{Path: path})
		i = len(s.mappings) - 1
	}

	sources := s.mappings[i].Sources
	for j := range sources {
		if sources[j].Name != entry.Name {
			continue
		}
		if entry.Module && !sources[j].Module {
			sources[j].Module = true
			return true
		}
		return false
	}

	s.mappings[i].Sources = append(sources, entry)
	return true
}

// EnsurePath registers path with no sources if it is not configured yet.
func (s *Set) EnsurePath(path string) {
	if s.index(path) < 0 {
		s.mappings = append(s.mappings, PathMapping{Path: path})
	}
}

func (s *Set) index(path string) int {
	for i := range s.mappings {
		if s.mappings[i].Path == path {
			return i
		}
	}
	return -1
}
