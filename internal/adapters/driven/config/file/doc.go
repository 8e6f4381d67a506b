// Package file provides file-based implementations of driven port
// interfaces. These adapters read configuration and prompt templates
// from the local filesystem.
//
// Adapters:
//   - Config: TOML application configuration with env-var secrets
//   - PromptStore: user-editable prompt files with embedded defaults
package file
