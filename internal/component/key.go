package component

import (
	"fmt"
	"strings"
)

// JoinKey builds the qualified key "<pkg>.<name>".
func JoinKey(pkg, name string) string {
	return pkg + "." + name
}

// SplitKey splits a qualified key on its last dot: "a.b.c" → ("a.b", "c").
func SplitKey(key string) (pkg, name string, err error) {
	i := strings.LastIndex(key, ".")
	if i <= 0 || i == len(key)-1 {
		return "", "", fmt.Errorf("invalid component key %q: want <package>.<name>", key)
	}
	return key[:i], key[i+1:], nil
}

// LocalKey returns the key used for a project-local type: ".<name>".
func LocalKey(name string) string {
	return "." + name
}

// IsLocalKey reports whether key refers to a type defined beside the
// component that uses it.
func IsLocalKey(key string) bool {
	return strings.HasPrefix(key, ".") && !strings.Contains(key[1:], ".")
}
