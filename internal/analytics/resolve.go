package analytics

import "github.com/classtrack/classtrack-api/internal/models"

// Sentinel labels returned when a foreign reference cannot be resolved.
// They signal a referential-integrity gap and callers are expected to count
// misses via the Index rather than swallow them.
const (
	UnknownStudent = "Unknown Student"
	UnknownClass   = "Unknown Class"
)

// Index resolves entity ids to display labels against a snapshot of the
// student and class collections. It tracks how many lookups missed so the
// caller can surface referential-integrity gaps.
type Index struct {
	students map[string]models.Student
	classes  map[string]models.Class
	misses   int
}

// NewIndex builds lookup maps over the given snapshots.
func NewIndex(students []models.Student, classes []models.Class) *Index {
	idx := &Index{
		students: make(map[string]models.Student, len(students)),
		classes:  make(map[string]models.Class, len(classes)),
	}
	for _, s := range students {
		idx.students[s.ID] = s
	}
	for _, c := range classes {
		idx.classes[c.ID] = c
	}
	return idx
}

// Student returns the student for id and whether it was found. A miss is
// recorded either way the caller uses it.
func (idx *Index) Student(id string) (models.Student, bool) {
	s, ok := idx.students[id]
	if !ok {
		idx.misses++
	}
	return s, ok
}

// Class returns the class for id and whether it was found.
func (idx *Index) Class(id string) (models.Class, bool) {
	c, ok := idx.classes[id]
	if !ok {
		idx.misses++
	}
	return c, ok
}

// StudentName resolves id to "First Last", or the UnknownStudent sentinel.
func (idx *Index) StudentName(id string) string {
	if s, ok := idx.Student(id); ok {
		return s.FullName()
	}
	return UnknownStudent
}

// ClassName resolves id to the class name, or the UnknownClass sentinel.
func (idx *Index) ClassName(id string) string {
	if c, ok := idx.Class(id); ok {
		return c.Name
	}
	return UnknownClass
}

// Misses reports how many lookups failed to resolve since the index was
// built.
func (idx *Index) Misses() int {
	return idx.misses
}
