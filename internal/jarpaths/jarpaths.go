// Package jarpaths resolves the --jars CLI argument (a mix of files and
// directories) into a flat, ordered list of jar file paths.
package jarpaths

import (
	"os"
	"path/filepath"
	"strings"
)

// Expand flattens each argument one level: a file is kept as-is (regardless
// of extension - matching the original's contract, which never checks the
// argument's own extension), a directory contributes every direct child
// whose name ends in ".jar".
func Expand(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			entries, err := os.ReadDir(arg)
			if err != nil {
				return nil, err
			}
			for _, e := range entries {
				if e.IsDir() {
					continue
				}
				if strings.HasSuffix(strings.ToLower(e.Name()), ".jar") {
					paths = append(paths, filepath.Join(arg, e.Name()))
				}
			}
			continue
		}
		paths = append(paths, arg)
	}
	return paths, nil
}
