// Package flagx lets several config layers share os.Args without tripping
// over each other's flags.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps the arguments that belong to allowedFlags, in order, and
// drops everything else. Both "-f value" and "-f=value" forms are recognized.
// In the separated form the next argument is taken as the value unless it
// starts with "-". Scanning stops at a bare "--".
//
//	FilterArgs([]string{"-c", "conf.yaml", "-x", "1"}, []string{"-c"})
//	// []string{"-c", "conf.yaml"}
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]bool, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = true
	}

	kept := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, inline := strings.Cut(arg, "=")
		if !allowed[name] {
			continue
		}
		kept = append(kept, arg)

		if !inline && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
			kept = append(kept, args[i])
		}
	}
	return kept
}

// ConfigFileFlag returns the config file path given via -c, -config or --config,
// ignoring every other argument so callers can parse their own flags
// independently. It returns "" when none is present; the last one wins.
func ConfigFileFlag() string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to config file (.json, .yaml)")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(os.Args[1:], []string{"-c", "-config", "--config"}))

	return path
}
