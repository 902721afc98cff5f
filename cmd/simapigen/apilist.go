package main

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
)

// apiList is the declarative description of the simulator API.
type apiList struct {
	APIs []*apiDef `yaml:"apis"`
}

type apiDef struct {
	Name string        `yaml:"name"`
	Req  []*fieldDef   `yaml:"req"`
	Resp []*variantDef `yaml:"resp"`
}

type variantDef struct {
	Name   string      `yaml:"name"`
	Fields []*fieldDef `yaml:"fields"`
}

type fieldDef struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

var (
	snakeName   = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)
	variantName = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)
)

// These variant names collide with the generated types and methods of an api.
var reservedVariants = map[string]bool{
	"ID":     true,
	"Result": true,
	"Req":    true,
	"Resp":   true,
}

// These api names collide with methods of the client.
var reservedAPIs = map[string]bool{
	"URL":        true,
	"NewSession": true,
}

func parseAPIList(data []byte) (*apiList, error) {
	var list apiList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("invalid api list: %v", err)
	}
	if len(list.APIs) == 0 {
		return nil, errors.New("api list is empty")
	}
	var (
		seen  = make(map[string]bool)
		types = make(map[string]string) // generated type name -> origin
	)
	declare := func(typeName, origin string) error {
		if prev, ok := types[typeName]; ok {
			return fmt.Errorf("%s and %s both generate type %s", prev, origin, typeName)
		}
		types[typeName] = origin
		return nil
	}
	for _, api := range list.APIs {
		if api.Name == "" {
			return nil, errors.New("api without name")
		}
		if !snakeName.MatchString(api.Name) {
			return nil, fmt.Errorf("api name %q is not snake_case", api.Name)
		}
		if seen[api.Name] {
			return nil, fmt.Errorf("duplicate api %q", api.Name)
		}
		seen[api.Name] = true
		apiType := goName(api.Name)
		if reservedAPIs[apiType] {
			return nil, fmt.Errorf("api name %q is reserved", api.Name)
		}
		for _, suffix := range []string{"Req", "Result", "Resp"} {
			if err := declare(apiType+suffix, "api "+api.Name); err != nil {
				return nil, err
			}
		}
		if err := checkFields(api.Req); err != nil {
			return nil, fmt.Errorf("api %s request: %v", api.Name, err)
		}
		if len(api.Resp) == 0 {
			return nil, fmt.Errorf("api %s has no response variants", api.Name)
		}
		variants := make(map[string]bool)
		for _, v := range api.Resp {
			if v.Name == "" {
				return nil, fmt.Errorf("api %s: variant without name", api.Name)
			}
			if !variantName.MatchString(v.Name) {
				return nil, fmt.Errorf("api %s: variant name %q is not an exported Go identifier", api.Name, v.Name)
			}
			if reservedVariants[v.Name] {
				return nil, fmt.Errorf("api %s: variant name %q is reserved", api.Name, v.Name)
			}
			if variants[v.Name] {
				return nil, fmt.Errorf("api %s: duplicate variant %q", api.Name, v.Name)
			}
			variants[v.Name] = true
			if err := declare(apiType+v.Name, "api "+api.Name+" variant "+v.Name); err != nil {
				return nil, err
			}
			if err := checkFields(v.Fields); err != nil {
				return nil, fmt.Errorf("api %s variant %s: %v", api.Name, v.Name, err)
			}
		}
	}
	return &list, nil
}

func checkFields(fields []*fieldDef) error {
	seen := make(map[string]string) // Go name -> field name
	for _, f := range fields {
		if f.Name == "" {
			return errors.New("field without name")
		}
		if !snakeName.MatchString(f.Name) {
			return fmt.Errorf("field name %q is not snake_case", f.Name)
		}
		if prev, ok := seen[goName(f.Name)]; ok {
			if prev == f.Name {
				return fmt.Errorf("duplicate field %q", f.Name)
			}
			return fmt.Errorf("fields %q and %q have the same Go name", prev, f.Name)
		}
		seen[goName(f.Name)] = f.Name
		if _, err := goType(f.Type); err != nil {
			return fmt.Errorf("field %s: %v", f.Name, err)
		}
	}
	return nil
}

// goType translates an api list type into Go syntax.
func goType(t string) (string, error) {
	t = strings.TrimSpace(t)
	switch t {
	case "String":
		return "string", nil
	case "Int":
		return "int", nil
	case "Float":
		return "float64", nil
	case "Bool":
		return "bool", nil
	case "Object":
		return "json.RawMessage", nil
	}
	if strings.HasPrefix(t, "Array<") && strings.HasSuffix(t, ">") {
		elem, err := goType(t[len("Array<") : len(t)-1])
		if err != nil {
			return "", err
		}
		return "[]" + elem, nil
	}
	return "", fmt.Errorf("unknown type %q", t)
}

var initialisms = map[string]string{
	"id":   "ID",
	"ip":   "IP",
	"url":  "URL",
	"json": "JSON",
	"http": "HTTP",
}

// goName converts snake_case to an exported Go identifier.
func goName(snake string) string {
	var b strings.Builder
	for _, part := range strings.Split(snake, "_") {
		if part == "" {
			continue
		}
		if up, ok := initialisms[strings.ToLower(part)]; ok {
			b.WriteString(up)
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// lowerName converts snake_case to an unexported Go identifier.
func lowerName(snake string) string {
	name := goName(snake)
	if name == "" {
		return name
	}
	for low, up := range initialisms {
		if strings.HasPrefix(name, up) {
			return low + name[len(up):]
		}
	}
	return strings.ToLower(name[:1]) + name[1:]
}
