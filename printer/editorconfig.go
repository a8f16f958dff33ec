// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package printer

import (
	"regexp"

	"mvdan.cc/editorconfig"
)

// query caches parsed .editorconfig files across calls, same as the
// teacher's shfmt keeps a single package-level editorconfig.Query.
var query = editorconfig.Query{
	FileCache:   make(map[string]*editorconfig.File),
	RegexpCache: make(map[string]*regexp.Regexp),
}

// ConfigForPath looks up the nearest .editorconfig section covering
// path under the "shell"/"bash" language tags and turns its indent
// properties into a Config, grounded on cmd/shfmt's propsOptions.
func ConfigForPath(path string) (Config, error) {
	props, err := query.Find(path, []string{"shell", "bash"})
	if err != nil {
		return Config{}, err
	}
	var c Config
	if props.Get("indent_style") == "space" {
		c.Spaces = 8
		if n := props.IndentSize(); n > 0 {
			c.Spaces = int(n)
		}
	}
	c.BinaryNextLine = props.Get("binary_next_line") == "true"
	return c, nil
}
