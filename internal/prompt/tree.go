package prompt

import (
	"path"
	"sort"
	"strings"
)

// RenderTree draws paths as a box-drawing tree under rootName. Within each
// directory, subdirectories come first sorted by name, then files sorted
// by name.
func RenderTree(rootName string, paths []string) string {
	dirs := map[string]struct{}{".": {}}
	filesByDir := map[string][]string{}

	for _, p := range paths {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		dir := path.Dir(p)
		if dir != "." {
			parts := strings.Split(dir, "/")
			for i := 1; i <= len(parts); i++ {
				dirs[strings.Join(parts[:i], "/")] = struct{}{}
			}
		}
		filesByDir[dir] = append(filesByDir[dir], path.Base(p))
	}

	childrenOf := func(parent string) []string {
		var children []string
		for d := range dirs {
			if d != "." && path.Dir(d) == parent {
				children = append(children, d)
			}
		}
		sort.Strings(children)
		return children
	}

	var out strings.Builder
	out.WriteString(rootName)

	var renderDir func(dirPath, prefix string)
	renderDir = func(dirPath, prefix string) {
		subdirs := childrenOf(dirPath)
		files := append([]string(nil), filesByDir[dirPath]...)
		sort.Strings(files)
		files = dedupeSorted(files)

		total := len(subdirs) + len(files)
		i := 0
		for _, d := range subdirs {
			i++
			last := i == total
			out.WriteString("\n" + prefix + connector(last) + path.Base(d))
			renderDir(d, prefix+continuation(last))
		}
		for _, f := range files {
			i++
			out.WriteString("\n" + prefix + connector(i == total) + f)
		}
	}
	renderDir(".", "")
	return out.String()
}

func connector(last bool) string {
	if last {
		return "└─ "
	}
	return "├─ "
}

func continuation(last bool) string {
	if last {
		return "   "
	}
	return "│  "
}

func dedupeSorted(in []string) []string {
	out := in[:0]
	for i, s := range in {
		if i == 0 || s != in[i-1] {
			out = append(out, s)
		}
	}
	return out
}
