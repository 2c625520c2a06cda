package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// migration rewrites a legacy value in place before binding. It returns a
// description of the change, or "" when the document was left alone.
type migration func(root *yaml.Node) string

// legacyHashAlgo is the spelling of BCrypt used by configs saved before
// the algorithm identifiers were renamed.
const legacyHashAlgo = "bcrypt"

// migrateHashAlgo rewrites hashAlgo: bcrypt (any case) to BCrypt.
func migrateHashAlgo(root *yaml.Node) string {
	v, ok := mappingGet(root, "hashAlgo")
	if !ok || v.Kind != yaml.ScalarNode {
		return ""
	}
	if !strings.EqualFold(v.Value, legacyHashAlgo) || v.Value == HashBCrypt {
		return ""
	}
	old := v.Value
	v.Value = HashBCrypt
	v.Tag = "!!str"
	return fmt.Sprintf("migrated legacy value hashAlgo %q → %q", old, HashBCrypt)
}
