package config

import (
	yaml "gopkg.in/yaml.v3"
)

// Specification of cover image resizing mode.
// ENUM(none, keepAR, stretch)
type ImageResizeMode int

// yaml.v3 ignores encoding.TextUnmarshaler, enumerations need explicit
// decoding support to be readable in configuration files.
func (m *ImageResizeMode) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	return m.UnmarshalText([]byte(name))
}
