// Package apicompat compares two OpenAPI documents and reports changes that
// would break existing clients: removed paths, operations or response codes.
package apicompat

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var supportedMethods = map[string]struct{}{
	"get":     {},
	"put":     {},
	"post":    {},
	"delete":  {},
	"patch":   {},
	"head":    {},
	"options": {},
}

// Operation is one method on one path.
type Operation struct {
	Responses map[string]struct{}
}

// Spec is the part of an OpenAPI document the comparison looks at.
type Spec struct {
	Paths map[string]map[string]Operation
}

// Has reports whether the document declares method on path.
func (s Spec) Has(method, path string) bool {
	ops, ok := s.Paths[path]
	if !ok {
		return false
	}
	_, ok = ops[strings.ToLower(method)]
	return ok
}

// Load parses a YAML or JSON OpenAPI document.
func Load(raw []byte) (Spec, error) {
	doc := map[string]interface{}{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Spec{}, fmt.Errorf("parse document: %w", err)
	}

	pathsRaw, ok := doc["paths"]
	if !ok {
		return Spec{}, errors.New("missing top-level paths field")
	}
	pathsMap, ok := toMap(pathsRaw)
	if !ok {
		return Spec{}, errors.New("paths is not an object")
	}

	spec := Spec{Paths: make(map[string]map[string]Operation)}
	for pathKey, pathEntry := range pathsMap {
		pathOps, ok := toMap(pathEntry)
		if !ok {
			continue
		}

		ops := make(map[string]Operation)
		for methodKey, methodEntry := range pathOps {
			method := strings.ToLower(strings.TrimSpace(methodKey))
			if _, supported := supportedMethods[method]; !supported {
				continue
			}
			methodMap, ok := toMap(methodEntry)
			if !ok {
				continue
			}
			ops[method] = Operation{Responses: responseCodes(methodMap)}
		}

		if len(ops) > 0 {
			spec.Paths[pathKey] = ops
		}
	}
	return spec, nil
}

func responseCodes(op map[string]interface{}) map[string]struct{} {
	codes := make(map[string]struct{})
	responses, ok := toMap(op["responses"])
	if !ok {
		return codes
	}
	for code := range responses {
		if normalized := strings.ToLower(strings.TrimSpace(code)); normalized != "" {
			codes[normalized] = struct{}{}
		}
	}
	return codes
}

func toMap(v interface{}) (map[string]interface{}, bool) {
	switch t := v.(type) {
	case map[string]interface{}:
		return t, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			// yaml decodes bare numeric keys such as 200 as ints
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// Compare lists every way revision breaks clients written against base,
// sorted for stable output.
func Compare(base, revision Spec) []string {
	var issues []string

	for path, baseOps := range base.Paths {
		revOps, ok := revision.Paths[path]
		if !ok {
			issues = append(issues, fmt.Sprintf("removed path: %s", path))
			continue
		}

		for method, baseOp := range baseOps {
			revOp, ok := revOps[method]
			if !ok {
				issues = append(issues, fmt.Sprintf("removed operation: %s %s", strings.ToUpper(method), path))
				continue
			}
			for code := range baseOp.Responses {
				if _, ok := revOp.Responses[code]; !ok {
					issues = append(issues, fmt.Sprintf("removed response code: %s %s -> %s",
						strings.ToUpper(method), path, strings.ToUpper(code)))
				}
			}
		}
	}

	sort.Strings(issues)
	return issues
}

// Routes lists every documented operation as "METHOD path" in Fiber's route
// syntax, with prefix (usually the basePath) prepended, sorted.
func Routes(s Spec, prefix string) []string {
	prefix = strings.TrimSuffix(prefix, "/")
	routes := make([]string, 0, len(s.Paths))
	for path, ops := range s.Paths {
		for method := range ops {
			routes = append(routes, strings.ToUpper(method)+" "+FiberPath(prefix+path))
		}
	}
	sort.Strings(routes)
	return routes
}

// FiberPath converts an OpenAPI path template to Fiber's route syntax,
// e.g. /reviews/{movieId} to /reviews/:movieId.
func FiberPath(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") {
			parts[i] = ":" + strings.TrimSuffix(strings.TrimPrefix(p, "{"), "}")
		}
	}
	return strings.Join(parts, "/")
}
