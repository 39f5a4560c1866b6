package values

import (
	"fmt"
	"path"
	"strings"
)

// ProjectPath is the colon-separated identity of a project inside a
// workspace. The root project is ":".
type ProjectPath struct {
	value string
}

// RootPath is the path of the workspace root project.
var RootPath = ProjectPath{value: ":"}

// NewProjectPath parses a project path such as ":core:io".
func NewProjectPath(s string) (ProjectPath, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == ":" {
		return RootPath, nil
	}
	if !strings.HasPrefix(s, ":") {
		s = ":" + s
	}
	for _, segment := range strings.Split(s[1:], ":") {
		if segment == "" {
			return ProjectPath{}, fmt.Errorf("invalid project path %q: empty segment", s)
		}
		if strings.ContainsAny(segment, `/\ `) {
			return ProjectPath{}, fmt.Errorf("invalid project path %q: segment %q contains a separator", s, segment)
		}
	}
	return ProjectPath{value: s}, nil
}

// MustNewProjectPath parses a path or panics
func MustNewProjectPath(s string) ProjectPath {
	p, err := NewProjectPath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Child returns the path of a direct child project.
func (p ProjectPath) Child(name string) ProjectPath {
	if p.IsRoot() {
		return ProjectPath{value: ":" + name}
	}
	return ProjectPath{value: p.String() + ":" + name}
}

// Parent returns the parent path. The parent of the root is the root.
func (p ProjectPath) Parent() ProjectPath {
	if p.IsRoot() {
		return RootPath
	}
	idx := strings.LastIndex(p.value, ":")
	if idx <= 0 {
		return RootPath
	}
	return ProjectPath{value: p.value[:idx]}
}

// Name returns the last segment, or "" for the root.
func (p ProjectPath) Name() string {
	if p.IsRoot() {
		return ""
	}
	return p.value[strings.LastIndex(p.value, ":")+1:]
}

// IsRoot reports whether this is the workspace root.
func (p ProjectPath) IsRoot() bool {
	return p.value == "" || p.value == ":"
}

// Depth returns the number of segments (0 for the root).
func (p ProjectPath) Depth() int {
	if p.IsRoot() {
		return 0
	}
	return strings.Count(p.value, ":")
}

// Dir returns the slash-separated directory relative to the workspace root.
func (p ProjectPath) Dir() string {
	if p.IsRoot() {
		return "."
	}
	return path.Join(strings.Split(p.value[1:], ":")...)
}

// TaskPath returns the fully qualified identity of a task owned by this project.
func (p ProjectPath) TaskPath(task string) string {
	if p.IsRoot() {
		return ":" + task
	}
	return p.value + ":" + task
}

// String returns the colon-separated form
func (p ProjectPath) String() string {
	if p.value == "" {
		return ":"
	}
	return p.value
}

// Equals checks if two paths are equal
func (p ProjectPath) Equals(other ProjectPath) bool {
	return p.String() == other.String()
}

// MarshalText implements encoding.TextMarshaler
func (p ProjectPath) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
