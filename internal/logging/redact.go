package logging

import (
	"strings"
)

// Redacted replaces the value of credential attributes.
const Redacted = "[redacted]"

var secretKeys = map[string]struct{}{
	"token":         {},
	"password":      {},
	"old_password":  {},
	"new_password":  {},
	"authorization": {},
}

// redact masks the values of credential keys in a key/value list. args is
// copied only when something has to be masked.
func redact(args []any) []any {
	var out []any
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		if _, secret := secretKeys[strings.ToLower(key)]; !secret {
			continue
		}
		if out == nil {
			out = append([]any(nil), args...)
		}
		out[i+1] = Redacted
	}
	if out == nil {
		return args
	}
	return out
}
