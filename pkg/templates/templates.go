// Package templates provides embedded YAML templates: the default
// configuration file and the default reference data.
package templates

import _ "embed"

// ConfigYAML contains the default config.yaml template for application configuration.
//
//go:embed config.yaml
var ConfigYAML string

// ReferenceYAML contains growth tables, nutrient targets, the food
// catalog, assistant intents and health facilities.
//
//go:embed reference.yaml
var ReferenceYAML []byte
