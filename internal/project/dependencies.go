package project

import "fmt"

// Dependency is a build dependency the host needs for generated back-end clients.
type Dependency struct {
	Group    string
	Artifact string
	Version  string
}

func (d Dependency) String() string {
	if d.Version == "" {
		return d.Group + ":" + d.Artifact
	}
	return d.Group + ":" + d.Artifact + ":" + d.Version
}

// Snippet renders d for the host's build tool.
func (c *Context) Snippet(d Dependency) string {
	switch c.BuildTool {
	case "maven":
		if d.Version == "" {
			return fmt.Sprintf("<dependency><groupId>%s</groupId><artifactId>%s</artifactId></dependency>", d.Group, d.Artifact)
		}
		return fmt.Sprintf("<dependency><groupId>%s</groupId><artifactId>%s</artifactId><version>%s</version></dependency>", d.Group, d.Artifact, d.Version)
	case "gradle":
		return fmt.Sprintf("compile %q", d.String())
	default:
		return d.String()
	}
}

// distributed reports whether the application already runs Spring Cloud.
func (c *Context) distributed() bool {
	switch c.ApplicationType {
	case "microservice", "gateway", "uaa":
		return true
	}
	return false
}

// RequiredDependencies lists the Feign and Spring Cloud artifacts generated
// back-end clients compile against. Unknown build tools get none.
func (c *Context) RequiredDependencies() []Dependency {
	if c.BuildTool != "maven" && c.BuildTool != "gradle" {
		return nil
	}
	if c.distributed() {
		return []Dependency{{Group: "org.springframework.cloud", Artifact: "spring-cloud-starter-feign"}}
	}
	return []Dependency{
		{Group: "org.springframework.cloud", Artifact: "spring-cloud-starter", Version: "1.1.1.RELEASE"},
		{Group: "org.springframework.cloud", Artifact: "spring-cloud-netflix-core", Version: "1.1.3.RELEASE"},
		{Group: "com.netflix.feign", Artifact: "feign-core", Version: "8.16.2"},
		{Group: "com.netflix.feign", Artifact: "feign-slf4j", Version: "8.16.2"},
		{Group: "org.springframework.cloud", Artifact: "spring-cloud-starter-oauth2", Version: "1.1.0.RELEASE"},
	}
}
