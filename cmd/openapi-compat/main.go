// Package main provides a CLI that checks an OpenAPI revision for changes
// that would break existing clients.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"reeltrack/docs"
	"reeltrack/internal/apicompat"
)

func main() {
	basePath := flag.String("base", "", "base OpenAPI swagger.yaml/json path")
	revisionPath := flag.String("revision", "", "revision OpenAPI path (defaults to the docs built into this binary)")
	listRoutes := flag.Bool("routes", false, "print the revision's operations as Fiber routes and exit")
	flag.Parse()

	var (
		revisionSpec apicompat.Spec
		err          error
	)
	if strings.TrimSpace(*revisionPath) == "" {
		revisionSpec, err = apicompat.Load([]byte(docs.SwaggerInfo.ReadDoc()))
	} else {
		revisionSpec, err = loadFile(*revisionPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load revision spec: %v\n", err)
		os.Exit(1)
	}

	if *listRoutes {
		for _, route := range apicompat.Routes(revisionSpec, docs.SwaggerInfo.BasePath) {
			fmt.Println(route)
		}
		return
	}

	if strings.TrimSpace(*basePath) == "" {
		fmt.Fprintln(os.Stderr, "usage: openapi-compat -base <path> [-revision <path>] | -routes [-revision <path>]")
		os.Exit(2)
	}

	baseSpec, err := loadFile(*basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load base spec: %v\n", err)
		os.Exit(1)
	}

	issues := apicompat.Compare(baseSpec, revisionSpec)
	if len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "backward compatibility check failed:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "- %s\n", issue)
		}
		os.Exit(1)
	}

	fmt.Println("openapi compatibility check passed")
}

func loadFile(path string) (apicompat.Spec, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return apicompat.Spec{}, err
	}
	return apicompat.Load(raw)
}
