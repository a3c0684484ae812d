// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// Optimization ranges accept either an explicit list ({values: [...]}) or an
// inclusive arithmetic range ({start, end, step}).
package config
