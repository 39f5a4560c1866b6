package entities

import (
	"context"
	"fmt"
	"regexp"

	"github.com/monoforge/monoforge/internal/domain/values"
)

// TaskAction is the work a task performs when it runs. It returns the
// output worth keeping in the run report, if any.
type TaskAction func(ctx context.Context) (string, error)

// Task is a named unit of work owned by one project.
type Task struct {
	Name        string
	Project     values.ProjectPath
	Description string
	Group       string
	Action      TaskAction

	dependsOn []*Task
}

// Path returns the fully qualified task identity (":core:publishJvm...").
func (t *Task) Path() string {
	return t.Project.TaskPath(t.Name)
}

// DependsOn adds dependencies. Adding the same task twice is a no-op.
func (t *Task) DependsOn(deps ...*Task) {
	for _, dep := range deps {
		if dep == nil || dep == t || t.HasDependency(dep) {
			continue
		}
		t.dependsOn = append(t.dependsOn, dep)
	}
}

// HasDependency reports whether dep is a direct dependency.
func (t *Task) HasDependency(dep *Task) bool {
	for _, existing := range t.dependsOn {
		if existing == dep {
			return true
		}
	}
	return false
}

// Dependencies returns direct dependencies in the order they were added.
func (t *Task) Dependencies() []*Task {
	result := make([]*Task, len(t.dependsOn))
	copy(result, t.dependsOn)
	return result
}

func (t *Task) String() string {
	return t.Path()
}

// TaskContainer holds the tasks of one project, keyed by name.
type TaskContainer struct {
	owner  values.ProjectPath
	tasks  []*Task
	byName map[string]*Task
}

// NewTaskContainer creates an empty container owned by a project.
func NewTaskContainer(owner values.ProjectPath) *TaskContainer {
	return &TaskContainer{
		owner:  owner,
		byName: make(map[string]*Task),
	}
}

// Register creates a new task. Registering an existing name is an error.
func (c *TaskContainer) Register(name string) (*Task, error) {
	if _, exists := c.byName[name]; exists {
		return nil, fmt.Errorf("task %s already exists", c.owner.TaskPath(name))
	}
	return c.add(name), nil
}

// FindByName returns the task with the given name.
func (c *TaskContainer) FindByName(name string) (*Task, bool) {
	t, ok := c.byName[name]
	return t, ok
}

// GetOrCreate returns the named task, creating it first if it does not
// exist. The boolean reports whether the task was created.
func (c *TaskContainer) GetOrCreate(name string) (*Task, bool) {
	if t, ok := c.byName[name]; ok {
		return t, false
	}
	return c.add(name), true
}

// All returns every task in registration order.
func (c *TaskContainer) All() []*Task {
	result := make([]*Task, len(c.tasks))
	copy(result, c.tasks)
	return result
}

// Matching returns the tasks whose names match pattern, in registration order.
func (c *TaskContainer) Matching(pattern *regexp.Regexp) []*Task {
	var result []*Task
	for _, t := range c.tasks {
		if pattern.MatchString(t.Name) {
			result = append(result, t)
		}
	}
	return result
}

// Len returns the number of tasks.
func (c *TaskContainer) Len() int {
	return len(c.tasks)
}

func (c *TaskContainer) add(name string) *Task {
	t := &Task{Name: name, Project: c.owner}
	c.tasks = append(c.tasks, t)
	c.byName[name] = t
	return t
}
