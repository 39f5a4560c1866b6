// Package services contains domain services operating on the project graph:
// readme rendering, release graph construction, and task ordering.
package services

import (
	"fmt"
	"sort"

	"github.com/monoforge/monoforge/internal/domain/entities"
)

// DependencyResolver handles task dependency graph operations
type DependencyResolver struct{}

// NewDependencyResolver creates a new dependency resolver service
func NewDependencyResolver() *DependencyResolver {
	return &DependencyResolver{}
}

// TaskLevel represents tasks at a specific dependency level
type TaskLevel struct {
	Level int
	Tasks []*entities.Task
}

// Closure returns the targets and everything they transitively depend on,
// dependencies before dependents, ties broken by discovery order.
// Cycles are reported as errors.
func (r *DependencyResolver) Closure(targets ...*entities.Task) ([]*entities.Task, error) {
	const (
		unvisited = iota
		visiting
		done
	)

	state := make(map[*entities.Task]int)
	var ordered []*entities.Task

	var visit func(t *entities.Task, trail []string) error
	visit = func(t *entities.Task, trail []string) error {
		switch state[t] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("circular dependency detected: %v", append(trail, t.Path()))
		}

		state[t] = visiting
		for _, dep := range t.Dependencies() {
			if err := visit(dep, append(trail, t.Path())); err != nil {
				return err
			}
		}
		state[t] = done
		ordered = append(ordered, t)
		return nil
	}

	for _, target := range targets {
		if err := visit(target, nil); err != nil {
			return nil, err
		}
	}

	return ordered, nil
}

// BuildTaskLevels groups tasks by dependency depth using Kahn's algorithm.
// Level 0 tasks have no dependencies inside the given set; every task in
// level N depends only on tasks in levels below N. Dependencies outside the
// set are ignored. Within a level tasks are sorted by path.
func (r *DependencyResolver) BuildTaskLevels(tasks []*entities.Task) ([]TaskLevel, error) {
	inSet := make(map[*entities.Task]bool, len(tasks))
	for _, t := range tasks {
		inSet[t] = true
	}

	inDegree := make(map[*entities.Task]int, len(tasks))
	dependents := make(map[*entities.Task][]*entities.Task)
	for _, t := range tasks {
		for _, dep := range t.Dependencies() {
			if !inSet[dep] {
				continue
			}
			inDegree[t]++
			dependents[dep] = append(dependents[dep], t)
		}
	}

	var levels []TaskLevel
	processed := make(map[*entities.Task]bool, len(tasks))
	level := 0

	for len(processed) < len(tasks) {
		var current []*entities.Task
		for _, t := range tasks {
			if !processed[t] && inDegree[t] == 0 {
				current = append(current, t)
			}
		}

		// No progress made → cycle detected
		if len(current) == 0 {
			var remaining []string
			for _, t := range tasks {
				if !processed[t] {
					remaining = append(remaining, t.Path())
				}
			}
			return nil, fmt.Errorf("circular dependency detected among tasks: %v", remaining)
		}

		sort.SliceStable(current, func(i, j int) bool {
			return current[i].Path() < current[j].Path()
		})
		levels = append(levels, TaskLevel{Level: level, Tasks: current})

		for _, t := range current {
			processed[t] = true
			for _, dependent := range dependents[t] {
				inDegree[dependent]--
			}
		}

		level++
	}

	return levels, nil
}
