// Package flagx contains helpers that let several packages parse their own
// subset of os.Args without stepping on each other's flags.
package flagx

import (
	"flag"
	"io"
	"os"
	"strings"
)

// FilterArgs returns the subset of args that belongs to allowedFlags.
//
// Both "-flag value" and "-flag=value" forms are recognised. A value is only
// attached to a flag when the next token does not itself look like a flag.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// lookupString parses a single string flag known under several names.
// The last occurrence wins.
func lookupString(names ...string) string {
	var value string

	allowed := make([]string, 0, len(names))
	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	for _, n := range names {
		allowed = append(allowed, "-"+n)
		fs.StringVar(&value, n, "", "")
	}
	_ = fs.Parse(FilterArgs(os.Args[1:], allowed))

	return value
}

// ConfigFileFlag returns the config file path given with -c or -config,
// or an empty string.
func ConfigFileFlag() string {
	return lookupString("config", "c")
}

// EnvFileFlag returns the dotenv file path given with -env, or an empty string.
func EnvFileFlag() string {
	return lookupString("env")
}
