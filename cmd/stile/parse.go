package main

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/stile/binning"
	"github.com/hupe1980/stile/corr2"
	"github.com/hupe1980/stile/schema"
)

// parseFileSpec splits "path[:field=pos,...]" into the path and its schema.
// Without a schema part the returned schema is nil.
func parseFileSpec(spec string) (string, schema.Schema, error) {
	i := strings.LastIndex(spec, ":")
	if i < 0 || !strings.Contains(spec[i+1:], "=") {
		if spec == "" {
			return "", nil, fmt.Errorf("empty file spec")
		}
		return spec, nil, nil
	}

	path := spec[:i]
	if path == "" {
		return "", nil, fmt.Errorf("file spec %q has no path", spec)
	}
	s := schema.Schema{}
	for _, kv := range strings.Split(spec[i+1:], ",") {
		name, pos, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return "", nil, fmt.Errorf("file spec %q: bad field %q", spec, kv)
		}
		p, err := strconv.Atoi(pos)
		if err != nil {
			return "", nil, fmt.Errorf("file spec %q: field %s: %w", spec, name, err)
		}
		s[name] = p
	}
	if err := s.Validate(); err != nil {
		return "", nil, fmt.Errorf("file spec %q: %w", spec, err)
	}
	return path, s, nil
}

// parseParams turns key=value pairs into corr2 parameters. Values are
// decoded as YAML scalars so numbers and booleans keep their type.
func parseParams(kvs []string) (corr2.Params, error) {
	p := corr2.Params{}
	for _, kv := range kvs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("bad parameter %q (want key=value)", kv)
		}
		var val any
		if err := yaml.Unmarshal([]byte(v), &val); err != nil || val == nil {
			val = v
		}
		p[k] = val
	}
	return p, nil
}

// parseBin parses "list:field:e0,e1,..." and "step:field:low:high:n" (or
// "logstep:...").
func parseBin(spec string) (binning.Bin, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 3 {
		return nil, fmt.Errorf("bad bin %q", spec)
	}
	kind, field := parts[0], parts[1]

	switch kind {
	case "list":
		if len(parts) != 3 {
			return nil, fmt.Errorf("bad list bin %q (want list:field:e0,e1,...)", spec)
		}
		var edges []float64
		for _, e := range strings.Split(parts[2], ",") {
			f, err := strconv.ParseFloat(e, 64)
			if err != nil {
				return nil, fmt.Errorf("bin %q: %w", spec, err)
			}
			edges = append(edges, f)
		}
		return binning.NewList(field, edges...)
	case "step", "logstep":
		if len(parts) != 5 {
			return nil, fmt.Errorf("bad step bin %q (want %s:field:low:high:n)", spec, kind)
		}
		low, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return nil, fmt.Errorf("bin %q: %w", spec, err)
		}
		high, err := strconv.ParseFloat(parts[3], 64)
		if err != nil {
			return nil, fmt.Errorf("bin %q: %w", spec, err)
		}
		n, err := strconv.Atoi(parts[4])
		if err != nil {
			return nil, fmt.Errorf("bin %q: %w", spec, err)
		}
		return binning.NewStep(field, low, high, n, kind == "logstep")
	default:
		return nil, fmt.Errorf("unknown bin kind %q (want list, step or logstep)", kind)
	}
}
