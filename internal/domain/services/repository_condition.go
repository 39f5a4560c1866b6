package services

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ConditionEnv is the environment a repository `when:` expression sees.
type ConditionEnv struct {
	// Name is the repository name.
	Name string `expr:"name"`
	// Group and Version are those of the workspace root project.
	Group    string `expr:"group"`
	Version  string `expr:"version"`
	Snapshot bool   `expr:"snapshot"`
	// Env holds the process environment.
	Env map[string]string `expr:"env"`
	// Properties holds the build properties.
	Properties map[string]string `expr:"properties"`
}

const (
	maxConditionLength = 1000
	maxConditionNodes  = 100
)

// RepositoryCondition evaluates `when:` expressions. Compiled programs are
// cached by expression text.
type RepositoryCondition struct {
	programCache map[string]*vm.Program
	cacheMu      sync.RWMutex
}

// NewRepositoryCondition creates an evaluator with an empty cache.
func NewRepositoryCondition() *RepositoryCondition {
	return &RepositoryCondition{
		programCache: make(map[string]*vm.Program),
	}
}

// Validate compiles an expression without running it.
func (c *RepositoryCondition) Validate(expression string) error {
	_, err := c.program(expression)
	return err
}

// Evaluate runs expression against env. An empty expression is true.
func (c *RepositoryCondition) Evaluate(expression string, env ConditionEnv) (bool, error) {
	if expression == "" {
		return true, nil
	}

	program, err := c.program(expression)
	if err != nil {
		return false, err
	}

	if env.Env == nil {
		env.Env = map[string]string{}
	}
	if env.Properties == nil {
		env.Properties = map[string]string{}
	}

	output, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate condition %q: %w", expression, err)
	}

	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q did not return a boolean: %v", expression, output)
	}
	return result, nil
}

func (c *RepositoryCondition) program(expression string) (*vm.Program, error) {
	if len(expression) > maxConditionLength {
		return nil, fmt.Errorf("condition too long (max %d chars): %d chars", maxConditionLength, len(expression))
	}

	c.cacheMu.RLock()
	program, found := c.programCache[expression]
	c.cacheMu.RUnlock()
	if found {
		return program, nil
	}

	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	if program, found := c.programCache[expression]; found {
		return program, nil
	}

	program, err := expr.Compile(expression,
		expr.Env(ConditionEnv{}),
		expr.AsBool(),
		expr.MaxNodes(maxConditionNodes))
	if err != nil {
		return nil, fmt.Errorf("invalid condition %q: %w", expression, err)
	}

	c.programCache[expression] = program
	return program, nil
}
