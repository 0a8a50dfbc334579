package loader

import (
	"os"
	"regexp"
)

var envExpr = regexp.MustCompile(`\$\{env\.([\p{L}\p{N}_]*)\}`)

// expandEnv replaces every ${env.KEY} with the value of the environment
// variable KEY; unset variables expand to an empty string. Expressions with
// invalid key characters are left as is.
func expandEnv(data []byte, lookup func(string) string) []byte {
	if lookup == nil {
		lookup = os.Getenv
	}
	return envExpr.ReplaceAllFunc(data, func(match []byte) []byte {
		key := envExpr.FindSubmatch(match)[1]
		return []byte(lookup(string(key)))
	})
}
