package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const serversFileName = "servers.yaml"

// ServerDef is one named stdio server entry in the servers file.
type ServerDef struct {
	Name    string            `yaml:"name"`
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
}

// serversFile is the on-disk shape of the server definitions file.
type serversFile struct {
	Servers []ServerDef `yaml:"servers"`
}

// DefaultServersPath returns the standard location of the servers file,
// e.g. ~/.config/mcpfs/servers.yaml.
func DefaultServersPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}

	return filepath.Join(dir, "mcpfs", serversFileName), nil
}

// LoadServers reads and parses a server definitions file.
// Returns nil, nil if the file does not exist.
func LoadServers(path string) ([]ServerDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read servers file: %w", err)
	}

	var f serversFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse servers file: %w", err)
	}

	seen := make(map[string]bool, len(f.Servers))
	for _, s := range f.Servers {
		if s.Name == "" {
			return nil, fmt.Errorf("servers file %s: entry without a name", path)
		}

		if s.Command == "" {
			return nil, fmt.Errorf("servers file %s: server %q has no command", path, s.Name)
		}

		if seen[s.Name] {
			return nil, fmt.Errorf("servers file %s: duplicate server %q", path, s.Name)
		}

		seen[s.Name] = true
	}

	return f.Servers, nil
}

// FindServer returns the definition with the given name.
func FindServer(defs []ServerDef, name string) (ServerDef, bool) {
	for _, d := range defs {
		if d.Name == name {
			return d, true
		}
	}

	return ServerDef{}, false
}
