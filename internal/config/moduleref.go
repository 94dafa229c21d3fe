package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ModuleRef references a preset, plugin or theme by identifier with optional
// options. In YAML it can be written as a bare string, a two element
// sequence [name, options], a mapping {name, options}, or false to leave a
// disabled slot. yaml.v3 skips null items in a sequence without consulting
// the unmarshaler, so "~" list entries are dropped rather than kept disabled.
type ModuleRef struct {
	Name     string
	Options  map[string]any
	Disabled bool
}

// PresetRef is a configured preset reference.
type PresetRef = ModuleRef

// PluginConfig is a plugin or theme declaration.
type PluginConfig = ModuleRef

// Ref builds a ModuleRef with the given options (nil allowed).
func Ref(name string, options map[string]any) ModuleRef {
	return ModuleRef{Name: name, Options: options}
}

// Enabled reports whether the reference names a module. Disabled and empty
// references are falsy and dropped by consumers.
func (r ModuleRef) Enabled() bool {
	return !r.Disabled && r.Name != ""
}

// Normalize splits the reference into its identifier and a non-nil options map.
func (r ModuleRef) Normalize() (string, map[string]any) {
	if r.Options == nil {
		return r.Name, map[string]any{}
	}
	return r.Name, r.Options
}

// String implements fmt.Stringer.
func (r ModuleRef) String() string {
	if !r.Enabled() {
		return "<disabled>"
	}
	return r.Name
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *ModuleRef) UnmarshalYAML(node *yaml.Node) error {
	*r = ModuleRef{}
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!null":
			// Reached only when a null is decoded directly into a ModuleRef.
			r.Disabled = true
			return nil
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return err
			}
			if b {
				return fmt.Errorf("line %d: module reference cannot be true", node.Line)
			}
			r.Disabled = true
			return nil
		case "!!str":
			r.Name = strings.TrimSpace(node.Value)
			if r.Name == "" {
				return fmt.Errorf("line %d: module name is empty", node.Line)
			}
			return nil
		default:
			return fmt.Errorf("line %d: module reference must be a string, got %s", node.Line, node.ShortTag())
		}

	case yaml.SequenceNode:
		if len(node.Content) == 0 || len(node.Content) > 2 {
			return fmt.Errorf("line %d: module tuple must be [name] or [name, options]", node.Line)
		}
		nameNode := node.Content[0]
		if nameNode.Kind != yaml.ScalarNode || nameNode.ShortTag() != "!!str" {
			return fmt.Errorf("line %d: module tuple name must be a string", nameNode.Line)
		}
		r.Name = strings.TrimSpace(nameNode.Value)
		if r.Name == "" {
			return fmt.Errorf("line %d: module name is empty", nameNode.Line)
		}
		if len(node.Content) == 2 {
			opts, err := decodeOptionsNode(node.Content[1])
			if err != nil {
				return err
			}
			r.Options = opts
		}
		return nil

	case yaml.MappingNode:
		var raw struct {
			Name    string    `yaml:"name"`
			Options yaml.Node `yaml:"options"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		r.Name = strings.TrimSpace(raw.Name)
		if r.Name == "" {
			return fmt.Errorf("line %d: module mapping requires a name", node.Line)
		}
		if raw.Options.Kind != 0 {
			opts, err := decodeOptionsNode(&raw.Options)
			if err != nil {
				return err
			}
			r.Options = opts
		}
		return nil

	default:
		return fmt.Errorf("line %d: unsupported module reference", node.Line)
	}
}

func decodeOptionsNode(n *yaml.Node) (map[string]any, error) {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null" {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: module options must be a mapping", n.Line)
	}
	var opts map[string]any
	if err := n.Decode(&opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// MarshalYAML implements yaml.Marshaler using the most compact form.
func (r ModuleRef) MarshalYAML() (any, error) {
	if !r.Enabled() {
		return false, nil
	}
	if len(r.Options) == 0 {
		return r.Name, nil
	}
	return []any{r.Name, r.Options}, nil
}

// MarshalJSON mirrors MarshalYAML: false, "name" or ["name", options].
func (r ModuleRef) MarshalJSON() ([]byte, error) {
	v, err := r.MarshalYAML()
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// UnmarshalJSON accepts the same shapes as UnmarshalYAML. JSON is a subset of
// YAML, so the document is decoded through the YAML node form.
func (r *ModuleRef) UnmarshalJSON(data []byte) error {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return err
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		return r.UnmarshalYAML(node.Content[0])
	}
	*r = ModuleRef{Disabled: true}
	return nil
}

// DecodeOptions decodes an opaque options map into a typed struct. Unknown
// keys are rejected so typos surface at startup.
func DecodeOptions(options map[string]any, out any) error {
	if len(options) == 0 {
		return nil
	}
	data, err := yaml.Marshal(options)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode options: %w", err)
	}
	return nil
}
