package command

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Registry returns all CLI commands keyed by "service action".
func Registry() map[string]Command {
	commands := []Command{
		{
			Service:      "problem",
			Action:       "list",
			Method:       "GET",
			PathTemplate: "/api/v1/problems",
			Target:       TargetBrowse,
			Fields: []Field{
				{Name: "user", Prompt: "user", In: InQuery, Type: FieldString},
				{Name: "point_from", Prompt: "point_from", In: InQuery, Type: FieldFloat},
				{Name: "point_to", Prompt: "point_to", In: InQuery, Type: FieldFloat},
				{Name: "rated", Prompt: "rated (all|only|none)", In: InQuery, Type: FieldString},
				{Name: "status", Prompt: "status (all|solved|attempted|untouched)", In: InQuery, Type: FieldString},
				{Name: "difficulty_from", Prompt: "difficulty_from", In: InQuery, Type: FieldFloat},
				{Name: "difficulty_to", Prompt: "difficulty_to", In: InQuery, Type: FieldFloat},
				{Name: "experimental", Prompt: "experimental (true|false)", In: InQuery, Type: FieldBool},
				{Name: "sort", Prompt: "sort (id|title|contest|point|difficulty)", In: InQuery, Type: FieldString},
				{Name: "order", Prompt: "order (asc|desc)", In: InQuery, Type: FieldString},
			},
		},
		{
			Service:      "contest",
			Action:       "list",
			Method:       "GET",
			PathTemplate: "/api/v1/contests",
			Target:       TargetBrowse,
		},
		{
			Service:      "user",
			Action:       "stats",
			Method:       "GET",
			PathTemplate: "/api/v1/users/:user/stats",
			Target:       TargetBrowse,
			Fields: []Field{
				{Name: "user", Prompt: "user", In: InPath, Type: FieldString, Required: true},
			},
		},
		{
			Service:      "user",
			Action:       "recommend",
			Method:       "GET",
			PathTemplate: "/api/v1/users/:user/recommendations",
			Target:       TargetBrowse,
			Fields: []Field{
				{Name: "user", Prompt: "user", In: InPath, Type: FieldString, Required: true},
				{Name: "band", Prompt: "band (easy|moderate|difficult)", In: InQuery, Type: FieldString},
				{Name: "exclude", Prompt: "exclude (none|1week|2weeks|4weeks|6months|solved|submitted)", In: InQuery, Type: FieldString},
				{Name: "experimental", Prompt: "experimental (true|false)", In: InQuery, Type: FieldBool},
				{Name: "count", Prompt: "count", In: InQuery, Type: FieldInt},
			},
		},
		{
			Service:      "user",
			Action:       "prefs-get",
			Method:       "GET",
			PathTemplate: "/api/v1/users/:user/preferences",
			Target:       TargetBrowse,
			Fields: []Field{
				{Name: "user", Prompt: "user", In: InPath, Type: FieldString, Required: true},
			},
		},
		{
			Service:      "user",
			Action:       "prefs-set",
			Method:       "PUT",
			PathTemplate: "/api/v1/users/:user/preferences",
			Target:       TargetBrowse,
			RequiresAuth: true,
			Fields: []Field{
				{Name: "user", Prompt: "user", In: InPath, Type: FieldString, Required: true},
				{Name: "band", Prompt: "band (easy|moderate|difficult)", In: InBody, Type: FieldString, Required: true},
				{Name: "exclude", Prompt: "exclude (none|1week|2weeks|4weeks|6months|solved|submitted)", In: InBody, Type: FieldString, Required: true},
				{Name: "include_experimental", Prompt: "include_experimental (true|false)", In: InBody, Type: FieldBool},
				{Name: "count", Prompt: "count", In: InBody, Type: FieldInt, Required: true},
			},
		},
		{
			Service:      "sync",
			Action:       "catalog",
			Method:       "POST",
			PathTemplate: "/api/v1/sync/catalog",
			Target:       TargetSync,
		},
		{
			Service:      "sync",
			Action:       "user",
			Method:       "POST",
			PathTemplate: "/api/v1/sync/users/:user",
			Target:       TargetSync,
			Fields: []Field{
				{Name: "user", Prompt: "user", In: InPath, Type: FieldString, Required: true},
			},
		},
	}

	registry := make(map[string]Command, len(commands))
	for _, cmd := range commands {
		registry[fmt.Sprintf("%s %s", cmd.Service, cmd.Action)] = cmd
	}
	return registry
}

// BuildRequest resolves the path template, query string and JSON body
// from the given params.
func BuildRequest(cmd Command, params Params) (RequestSpec, error) {
	path := cmd.PathTemplate
	query := url.Values{}
	body := map[string]interface{}{}

	for _, field := range cmd.Fields {
		value := params.Get(field.Name)
		if value == "" {
			if field.Required {
				return RequestSpec{}, fmt.Errorf("%s is required", field.Name)
			}
			continue
		}
		if err := validateField(field, value); err != nil {
			return RequestSpec{}, err
		}

		switch field.In {
		case InPath:
			path = strings.ReplaceAll(path, ":"+field.Name, url.PathEscape(value))
		case InQuery:
			query.Set(field.Name, value)
		case InBody:
			encoded, err := encodeBodyValue(field, value)
			if err != nil {
				return RequestSpec{}, err
			}
			body[field.Name] = encoded
		}
	}

	if strings.Contains(path, ":") {
		return RequestSpec{}, fmt.Errorf("unresolved path template: %s", path)
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	spec := RequestSpec{Method: cmd.Method, Path: path}
	if len(body) > 0 {
		payload, err := json.Marshal(body)
		if err != nil {
			return RequestSpec{}, fmt.Errorf("marshal request body failed: %w", err)
		}
		spec.Body = payload
	}
	return spec, nil
}

func validateField(field Field, value string) error {
	switch field.Type {
	case FieldInt:
		if _, err := ParseInt(value); err != nil {
			return fmt.Errorf("invalid %s: %w", field.Name, err)
		}
	case FieldFloat:
		if _, err := ParseFloat(value); err != nil {
			return fmt.Errorf("invalid %s: %w", field.Name, err)
		}
	case FieldBool:
		if _, err := ParseBool(value); err != nil {
			return fmt.Errorf("invalid %s: %w", field.Name, err)
		}
	}
	return nil
}

func encodeBodyValue(field Field, value string) (interface{}, error) {
	switch field.Type {
	case FieldInt:
		return ParseInt(value)
	case FieldFloat:
		return ParseFloat(value)
	case FieldBool:
		return ParseBool(value)
	}
	return value, nil
}
