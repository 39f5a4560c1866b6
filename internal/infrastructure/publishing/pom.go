package publishing

import (
	"encoding/xml"
	"fmt"

	"github.com/monoforge/monoforge/internal/domain/entities"
)

const (
	pomNamespace      = "http://maven.apache.org/POM/4.0.0"
	pomXSI            = "http://www.w3.org/2001/XMLSchema-instance"
	pomSchemaLocation = "http://maven.apache.org/POM/4.0.0 https://maven.apache.org/xsd/maven-4.0.0.xsd"
)

type pomProject struct {
	XMLName        xml.Name       `xml:"project"`
	Xmlns          string         `xml:"xmlns,attr"`
	XmlnsXSI       string         `xml:"xmlns:xsi,attr"`
	SchemaLocation string         `xml:"xsi:schemaLocation,attr"`
	ModelVersion   string         `xml:"modelVersion"`
	GroupID        string         `xml:"groupId"`
	ArtifactID     string         `xml:"artifactId"`
	Version        string         `xml:"version"`
	Packaging      string         `xml:"packaging,omitempty"`
	Name           string         `xml:"name"`
	Description    string         `xml:"description,omitempty"`
	URL            string         `xml:"url,omitempty"`
	Licenses       *pomLicenses   `xml:"licenses,omitempty"`
	Developers     *pomDevelopers `xml:"developers,omitempty"`
	SCM            *pomSCM        `xml:"scm,omitempty"`
}

// Wrapper elements are pointers so that an absent block is omitted
// instead of rendered empty.
type pomLicenses struct {
	License []pomLicense `xml:"license"`
}

type pomDevelopers struct {
	Developer []pomDeveloper `xml:"developer"`
}

type pomLicense struct {
	Name string `xml:"name"`
	URL  string `xml:"url,omitempty"`
}

type pomDeveloper struct {
	ID    string `xml:"id,omitempty"`
	Name  string `xml:"name,omitempty"`
	Email string `xml:"email,omitempty"`
}

type pomSCM struct {
	URL        string `xml:"url"`
	Connection string `xml:"connection,omitempty"`
}

// BuildPOM renders the POM of one publication. Workspace-level license,
// developer, and VCS blocks are copied in when present.
func BuildPOM(ws *entities.Workspace, project *entities.Project, coords Coordinates, packaging string) ([]byte, error) {
	pom := pomProject{
		Xmlns:          pomNamespace,
		XmlnsXSI:       pomXSI,
		SchemaLocation: pomSchemaLocation,
		ModelVersion:   "4.0.0",
		GroupID:        coords.Group,
		ArtifactID:     coords.ArtifactID,
		Version:        coords.Version,
		Name:           project.Name,
		Description:    project.Description,
	}
	if packaging != "jar" {
		pom.Packaging = packaging
	}

	if ws != nil {
		if ws.License != nil {
			pom.Licenses = &pomLicenses{License: []pomLicense{{Name: ws.License.Name, URL: ws.License.URL}}}
		}
		if len(ws.Developers) > 0 {
			pom.Developers = &pomDevelopers{}
			for _, d := range ws.Developers {
				pom.Developers.Developer = append(pom.Developers.Developer, pomDeveloper(d))
			}
		}
		if ws.VCS != nil {
			pom.URL = ws.VCS.URL
			pom.SCM = &pomSCM{URL: ws.VCS.URL, Connection: ws.VCS.Connection}
		}
	}

	body, err := xml.MarshalIndent(pom, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render POM for %s: %w", coords, err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}
