package services

import (
	"fmt"
	"regexp"

	"github.com/monoforge/monoforge/internal/domain/entities"
	"github.com/monoforge/monoforge/internal/domain/values"
)

// ReleaseTaskName is the root task that publishes everything.
const ReleaseTaskName = "release"

// PublishTaskName returns the name of the task publishing pub to repo.
func PublishTaskName(pub values.PublicationName, repo values.RepositoryName) string {
	return "publish" + pub.Capitalized() + "PublicationTo" + repo.Capitalized() + "Repository"
}

// ReleasePublicationTaskName returns the name of the aggregate task of one
// publication ("releaseJvm").
func ReleasePublicationTaskName(pub string) string {
	return ReleaseTaskName + pub
}

// PublishTaskRecord is a publish task matched against one repository.
type PublishTaskRecord struct {
	RepositoryName  values.RepositoryName
	PublicationName string
	Task            *entities.Task
}

// publishTaskPattern matches publish tasks targeting repo. The publication
// segment is captured as written in the task name (already capitalized).
func publishTaskPattern(repo values.RepositoryName) *regexp.Regexp {
	return regexp.MustCompile(`^publish([A-Za-z0-9]+)PublicationTo` + regexp.QuoteMeta(repo.Capitalized()) + `Repository$`)
}

var anyPublishTask = regexp.MustCompile(`^publish[A-Za-z0-9]+PublicationTo[A-Za-z0-9]+Repository$`)

// PublishTasks returns the tasks of a container that follow the publish
// task naming convention, for any repository.
func PublishTasks(c *entities.TaskContainer) []*entities.Task {
	return c.Matching(anyPublishTask)
}

// ParsePublishTaskName matches a task name against repo's publish task
// naming convention and extracts the publication segment.
func ParsePublishTaskName(name string, repo values.RepositoryName) (string, bool) {
	m := publishTaskPattern(repo).FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ReleaseGraph is the result of BuildReleaseGraph.
type ReleaseGraph struct {
	Root           *entities.Task
	PerPublication map[string]*entities.Task
	Records        []PublishTaskRecord
}

// PublicationTasks returns the per-publication tasks in the order the root
// depends on them.
func (g ReleaseGraph) PublicationTasks() []*entities.Task {
	return g.Root.Dependencies()
}

// BuildReleaseGraph wires publish tasks into aggregate release tasks in the
// root container: for each repository, every publish task whose name matches
// publish<Pub>PublicationTo<Repo>Repository becomes a dependency of
// release<Pub>, and the root release task depends on every release<Pub>.
// Running it again over the same inputs adds no tasks or edges.
func BuildReleaseGraph(root *entities.TaskContainer, publishTasks []*entities.Task, repos []values.RepositoryName) (ReleaseGraph, error) {
	if root == nil {
		return ReleaseGraph{}, fmt.Errorf("root task container is required")
	}

	release, created := root.GetOrCreate(ReleaseTaskName)
	if created {
		release.Description = "Publishes every publication to every enabled repository"
		release.Group = "publishing"
	}

	graph := ReleaseGraph{
		Root:           release,
		PerPublication: make(map[string]*entities.Task),
	}

	for _, repo := range repos {
		pattern := publishTaskPattern(repo)
		for _, task := range publishTasks {
			m := pattern.FindStringSubmatch(task.Name)
			if m == nil {
				continue
			}
			pub := m[1]

			perPub, created := root.GetOrCreate(ReleasePublicationTaskName(pub))
			if created {
				perPub.Description = fmt.Sprintf("Publishes the %s publication to every enabled repository", pub)
				perPub.Group = "publishing"
			}
			perPub.DependsOn(task)
			release.DependsOn(perPub)

			graph.PerPublication[pub] = perPub
			graph.Records = append(graph.Records, PublishTaskRecord{
				RepositoryName:  repo,
				PublicationName: pub,
				Task:            task,
			})
		}
	}

	return graph, nil
}
