// Enums here are shared between configuration and command packages. Keeping
// them separate avoids an import cycle: config needs the types for
// unmarshaling while command code needs them to interpret flags.
package common

import (
	yaml "gopkg.in/yaml.v3"
)

// Specification of requested output layout.
// ENUM(chapters, arcs)
type OutputMode int

func (m OutputMode) Joined() bool {
	return m == OutputModeArcs
}

// yaml.v3 ignores encoding.TextUnmarshaler, enumerations need explicit
// decoding support to be readable in configuration files.
func (m *OutputMode) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	return m.UnmarshalText([]byte(name))
}

// Specification of paragraph alignment.
// ENUM(none, left, right, center, justify)
type Alignment int

// Control returns alignment control word, empty for AlignmentNone.
func (a Alignment) Control() string {
	switch a {
	case AlignmentLeft:
		return `\ql`
	case AlignmentRight:
		return `\qr`
	case AlignmentCenter:
		return `\qc`
	case AlignmentJustify:
		return `\qj`
	default:
		return ""
	}
}

func (a *Alignment) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	return a.UnmarshalText([]byte(name))
}
