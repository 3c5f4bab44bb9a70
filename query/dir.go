package query

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alexballas/xexplorer/cache"
	"github.com/alexballas/xexplorer/entity"
)

// FilePathType is the cache node type DirSource produces.
const FilePathType = "FilePath"

type SortOrder int

const (
	SortNameAsc SortOrder = iota
	SortNameDesc
	SortSizeAsc
	SortDateDesc
)

// DirSource pages through the entries of a local directory. Directories come
// first. The listing is read again whenever the first page is requested, so
// a refetch picks up changes on disk.
type DirSource struct {
	Root       string
	PageSize   int
	ShowHidden bool
	Sort       SortOrder
	// Match keeps only entries whose name contains it, ignoring case.
	Match string
	// Ephemeral produces inline NonIndexedPath items instead of Path items
	// referencing FilePath nodes.
	Ephemeral bool

	mu      sync.Mutex
	entries []dirEntry
	read    bool
}

type dirEntry struct {
	path    string
	name    string
	isDir   bool
	hidden  bool
	size    int64
	modTime time.Time
}

// FetchPage returns the page starting at the offset encoded in cursor.
func (s *DirSource) FetchPage(ctx context.Context, cursor string) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}

	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return Page{}, fmt.Errorf("bad cursor %q", cursor)
		}
		offset = n
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cursor == "" || !s.read {
		if err := s.readLocked(); err != nil {
			return Page{}, err
		}
	}

	size := s.PageSize
	if size <= 0 {
		size = len(s.entries)
	}
	end := min(offset+size, len(s.entries))
	if offset > end {
		offset = end
	}

	var page Page
	for _, e := range s.entries[offset:end] {
		if s.Ephemeral {
			page.Items = append(page.Items, map[string]any{
				"type": string(entity.KindNonIndexedPath),
				"item": e.fields(true),
			})
			continue
		}
		id, node := e.node()
		page.Nodes = append(page.Nodes, node)
		page.Items = append(page.Items, map[string]any{
			"type":                string(entity.KindPath),
			"item":                cache.Ref(FilePathType, id),
			"has_local_thumbnail": false,
		})
	}
	if end < len(s.entries) {
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

// Count returns the number of entries the listing will page through.
func (s *DirSource) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.read {
		if err := s.readLocked(); err != nil {
			return 0, err
		}
	}
	return len(s.entries), nil
}

func (s *DirSource) readLocked() error {
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", s.Root, err)
	}
	list, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("list %s: %w", root, err)
	}

	match := strings.ToLower(s.Match)
	entries := make([]dirEntry, 0, len(list))
	for _, de := range list {
		name := de.Name()
		hidden := name == "" || name[0] == '.'
		if hidden && !s.ShowHidden {
			continue
		}
		if match != "" && !strings.Contains(strings.ToLower(name), match) {
			continue
		}
		e := dirEntry{
			path:   filepath.Join(root, name),
			name:   name,
			isDir:  de.IsDir(),
			hidden: hidden,
		}
		if info, err := de.Info(); err == nil {
			e.size = info.Size()
			e.modTime = info.ModTime()
			if info.Mode()&os.ModeSymlink != 0 {
				if st, err := os.Stat(e.path); err == nil {
					e.isDir = st.IsDir()
				}
			}
		}
		if e.isDir {
			e.size = 0
		}
		entries = append(entries, e)
	}

	sortEntries(entries, s.Sort)
	s.entries = entries
	s.read = true
	return nil
}

func sortEntries(entries []dirEntry, order SortOrder) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.isDir != b.isDir {
			return a.isDir
		}

		n1, n2 := strings.ToLower(a.name), strings.ToLower(b.name)
		switch order {
		case SortNameDesc:
			return n1 > n2
		case SortSizeAsc:
			if a.size != b.size {
				return a.size < b.size
			}
		case SortDateDesc:
			if !a.modTime.Equal(b.modTime) {
				return a.modTime.After(b.modTime)
			}
		}
		return n1 < n2
	})
}

// PubID is the stable id of a local path: a name based UUID, so the same
// path always maps to the same id across listings and sessions.
func PubID(path string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(path)))
}

func (e dirEntry) node() (string, map[string]any) {
	id := PubID(e.path)
	node := e.fields(false)
	node[cache.TypeKey] = FilePathType
	node[cache.IDKey] = id.String()
	return id.String(), node
}

func (e dirEntry) fields(inline bool) map[string]any {
	id := PubID(e.path)
	stem, ext := e.name, ""
	if !e.isDir {
		if x := filepath.Ext(e.name); x != "" && x != e.name {
			stem, ext = strings.TrimSuffix(e.name, x), x[1:]
		}
	}
	m := map[string]any{
		"pub_id":            id[:],
		"name":              stem,
		"extension":         ext,
		"is_dir":            e.isDir,
		"hidden":            e.hidden,
		"size_in_bytes":     e.size,
		"materialized_path": materializedPath(e.path),
	}
	if !e.modTime.IsZero() {
		m["date_modified"] = e.modTime.UTC().Format(time.RFC3339)
	}
	if inline {
		m["path"] = e.path
	}
	return m
}

func materializedPath(path string) string {
	dir := filepath.ToSlash(filepath.Dir(path))
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	return dir
}
