// Package file keeps user configuration under ~/.lexis: settings in
// config.toml and editable answer prompts in prompts/.
package file
