package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Pyproject holds the fields of a pyproject.toml manifest that end up in
// the wheel metadata.
type Pyproject struct {
	Project struct {
		Name           string            `toml:"name"`
		Description    string            `toml:"description"`
		RequiresPython string            `toml:"requires-python"`
		Authors        []PyprojectAuthor `toml:"authors"`
		URLs           map[string]string `toml:"urls"`
	} `toml:"project"`
}

type PyprojectAuthor struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

// LoadPyproject reads a pyproject.toml manifest from a file.
func LoadPyproject(name string) (Pyproject, error) {
	var p Pyproject
	if _, err := toml.DecodeFile(name, &p); err != nil {
		return Pyproject{}, err
	}
	if p.Project.Name == "" {
		return Pyproject{}, fmt.Errorf("%s: missing project.name", name)
	}
	return p, nil
}

// Author returns the first author's name, or an empty string.
func (p Pyproject) Author() string {
	if len(p.Project.Authors) == 0 {
		return ""
	}
	return p.Project.Authors[0].Name
}

// Homepage returns the project's homepage url, or an empty string.
func (p Pyproject) Homepage() string {
	return p.Project.URLs["Homepage"]
}
