package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RouteMap is the raw route registration format: "METHOD /path/with/{params}"
// mapped to a handler reference such as "UserController@show".
//
//	routes:
//	  "GET /users":      "UserController@index"
//	  "GET /users/{id}": "UserController@show"
type RouteMap map[string]string

type routesFile struct {
	Routes RouteMap `yaml:"routes"`
}

// LoadRouteMap reads a YAML route map from disk.
//
// The top-level "routes" key is optional; a bare mapping document is accepted
// as well.
func LoadRouteMap(path string) (RouteMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read route map: %w", err)
	}
	return ParseRouteMap(data)
}

// ParseRouteMap decodes a YAML route map document.
func ParseRouteMap(data []byte) (RouteMap, error) {
	var wrapped routesFile
	if err := yaml.Unmarshal(data, &wrapped); err == nil && len(wrapped.Routes) > 0 {
		return wrapped.Routes, nil
	}

	var bare RouteMap
	if err := yaml.Unmarshal(data, &bare); err != nil {
		return nil, fmt.Errorf("config: parse route map: %w", err)
	}
	return bare, nil
}
