package hierarchy

import "errors"

// ErrCircular is returned when a parent assignment would close a cycle.
var ErrCircular = errors.New("would create a circular relationship")

// Links maps a record id to its parent id (nil at a root).
type Links map[int64]*int64

// LinksOf collects the parent links of records.
func LinksOf[T Item](records []T) Links {
	links := make(Links, len(records))
	for _, r := range records {
		links[r.RecordID()] = r.ParentRef()
	}
	return links
}

// IsCircular reports whether giving recordID the parent candidate would make
// the hierarchy cyclic. The walk climbs from candidate through links and
// stops at a root, at an id missing from links, on reaching recordID, or on
// revisiting an ancestor (a cycle already present in the data).
func IsCircular(links Links, recordID int64, candidate *int64) bool {
	if candidate == nil {
		return false
	}
	if *candidate == recordID {
		return true
	}

	visited := make(map[int64]struct{}, len(links))
	current := *candidate
	for {
		if current == recordID {
			return true
		}
		if _, seen := visited[current]; seen {
			return true
		}
		visited[current] = struct{}{}

		parent, ok := links[current]
		if !ok || parent == nil {
			return false
		}
		current = *parent
	}
}

// Check returns ErrCircular when IsCircular reports a cycle.
func Check(links Links, recordID int64, candidate *int64) error {
	if IsCircular(links, recordID, candidate) {
		return ErrCircular
	}
	return nil
}
