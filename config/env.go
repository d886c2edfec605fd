package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by EnvSource
const EnvPrefix = "USAGEPIVOT"

// DotEnvFiles are loaded, when present, before environment variables are read
var DotEnvFiles = []string{".env"}

// LoadDotEnv loads the existing files among paths into the process
// environment. Variables that are already set keep their values.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// EnvKey returns the variable name for a configuration key
func EnvKey(prefix, key string) string {
	name := strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}

// flattenKeys returns every leaf of cfg keyed by its dotted yaml path
func flattenKeys(cfg interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	walkKeys(reflect.ValueOf(cfg), "", out)
	return out
}

func walkKeys(v reflect.Value, prefix string, out map[string]interface{}) {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		out[prefix] = v.Interface()
		return
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := strings.Split(field.Tag.Get("yaml"), ",")[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = strings.ToLower(field.Name)
		}
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}
		walkKeys(v.Field(i), key, out)
	}
}

// parsePairs reads "from=to;from=to" into a map. Pairs are separated by
// semicolons because performer names contain commas.
func parsePairs(s string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ";") {
		from, to, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		from = strings.TrimSpace(from)
		if from == "" {
			continue
		}
		out[from] = strings.TrimSpace(to)
	}
	return out
}
