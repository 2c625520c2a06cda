// Package config loads the plugin configuration directory.
//
// The directory holds two YAML documents:
//   - config.conf — General: database, mail, hashAlgo, login policy, teleport
//     and command lists
//   - locale.conf — Text: user-facing message templates, headed by a pointer
//     to the community template wiki
//
// Loader.Load creates the directory and empty files when missing, parses each
// file into a yaml.Node document, rewrites the legacy hashAlgo value "bcrypt"
// (any case) to "BCrypt", binds the document onto a fresh defaults record,
// validates it, inserts every missing key with its default and a comment,
// and atomically writes the file back when its bytes changed. Each file and
// each stage (create, load, save) fails independently; failures are logged
// and the affected record keeps its last bound value.
//
// Durations are stored as literals ("10s", "5m", "1h30m") via Duration.
//
// Loader.Watch uses fsnotify to re-run Load when either file changes.
package config
