// Package guard decides whether a candidate file should be imported as text.
package guard

import (
	"path/filepath"
	"strings"
)

// Candidate is the metadata the guard inspects. Type is the MIME type as
// reported by the handle and may be empty.
type Candidate struct {
	Name string
	Type string
	Size int64
}

var textApplicationTypes = map[string]struct{}{
	"application/json":          {},
	"application/ld+json":       {},
	"application/xml":           {},
	"application/yaml":          {},
	"application/x-yaml":        {},
	"application/toml":          {},
	"application/javascript":    {},
	"application/x-javascript":  {},
	"application/ecmascript":    {},
	"application/typescript":    {},
	"application/x-sh":          {},
	"application/x-shellscript": {},
	"application/sql":           {},
	"application/graphql":       {},
	"application/x-httpd-php":   {},
	"application/x-python":      {},
	"application/x-ruby":        {},
	"application/x-perl":        {},
	"application/xhtml+xml":     {},
	"application/x-tex":         {},
	"application/x-ndjson":      {},
}

var binaryApplicationTypes = map[string]struct{}{
	"application/pdf":               {},
	"application/zip":               {},
	"application/gzip":              {},
	"application/x-gzip":            {},
	"application/x-tar":             {},
	"application/x-7z-compressed":   {},
	"application/x-rar-compressed":  {},
	"application/vnd.rar":           {},
	"application/java-archive":      {},
	"application/wasm":              {},
	"application/x-msdownload":      {},
	"application/x-executable":      {},
	"application/x-sharedlib":       {},
	"application/msword":            {},
	"application/vnd.ms-excel":      {},
	"application/vnd.ms-powerpoint": {},
	"application/x-sqlite3":         {},
	"application/vnd.sqlite3":       {},
}

var textExtensions = map[string]struct{}{
	".txt": {}, ".md": {}, ".mdx": {}, ".markdown": {}, ".rst": {}, ".adoc": {}, ".org": {},
	".go": {}, ".mod": {}, ".sum": {}, ".rs": {}, ".c": {}, ".h": {}, ".cc": {}, ".cpp": {},
	".hpp": {}, ".cs": {}, ".java": {}, ".kt": {}, ".kts": {}, ".scala": {}, ".swift": {},
	".m": {}, ".mm": {}, ".py": {}, ".pyi": {}, ".rb": {}, ".php": {}, ".pl": {}, ".lua": {},
	".r": {}, ".jl": {}, ".dart": {}, ".ex": {}, ".exs": {}, ".erl": {}, ".hs": {}, ".clj": {},
	".zig": {}, ".nim": {}, ".v": {}, ".sol": {},
	".js": {}, ".mjs": {}, ".cjs": {}, ".jsx": {}, ".ts": {}, ".tsx": {}, ".vue": {}, ".svelte": {},
	".astro": {}, ".html": {}, ".htm": {}, ".css": {}, ".scss": {}, ".sass": {}, ".less": {},
	".json": {}, ".jsonc": {}, ".json5": {}, ".yaml": {}, ".yml": {}, ".toml": {}, ".ini": {},
	".cfg": {}, ".conf": {}, ".env": {}, ".properties": {}, ".xml": {}, ".svg": {}, ".csv": {},
	".tsv": {}, ".sql": {}, ".graphql": {}, ".gql": {}, ".proto": {}, ".tf": {}, ".hcl": {},
	".sh": {}, ".bash": {}, ".zsh": {}, ".fish": {}, ".ps1": {}, ".bat": {}, ".cmd": {},
	".gradle": {}, ".cmake": {}, ".mk": {}, ".dockerfile": {}, ".gitignore": {},
	".gitattributes": {}, ".editorconfig": {}, ".lock": {}, ".log": {}, ".tex": {},
}

var textFilenames = map[string]struct{}{
	"makefile": {}, "gnumakefile": {}, "dockerfile": {}, "containerfile": {}, "license": {},
	"licence": {}, "copying": {}, "readme": {}, "changelog": {}, "authors": {}, "notice": {},
	"procfile": {}, "gemfile": {}, "rakefile": {}, "vagrantfile": {}, "jenkinsfile": {},
	"brewfile": {}, "justfile": {}, "codeowners": {},
}

var imageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".avif": "image/avif",
	".heic": "image/heic",
}

var mediaExtensions = map[string]struct{}{
	".mp3": {}, ".wav": {}, ".flac": {}, ".ogg": {}, ".m4a": {}, ".aac": {}, ".opus": {},
	".mp4": {}, ".mov": {}, ".mkv": {}, ".avi": {}, ".webm": {}, ".wmv": {}, ".m4v": {},
}

// IsTextLike reports whether c may be imported as text. Files larger than
// maxSize are always rejected. A conclusive MIME type decides on its own;
// otherwise the extension and well-known filename lists are consulted.
func IsTextLike(c Candidate, maxSize int64) bool {
	if c.Size > maxSize {
		return false
	}
	switch mimeVerdict(c.Type) {
	case verdictText:
		return true
	case verdictBinary:
		return false
	}
	if IsImage(c) || IsAudioOrVideo(c) || IsPDF(c) {
		return false
	}
	return hasTextName(c.Name)
}

// IsImage reports whether c looks like a raster image.
func IsImage(c Candidate) bool {
	mt := normalizeMIME(c.Type)
	if strings.HasPrefix(mt, "image/") {
		// SVG is markup and is handled as text.
		return mt != "image/svg+xml"
	}
	_, ok := imageExtensions[ext(c.Name)]
	return ok
}

// IsAudioOrVideo reports whether c is an audio or video file.
func IsAudioOrVideo(c Candidate) bool {
	mt := normalizeMIME(c.Type)
	if strings.HasPrefix(mt, "audio/") || strings.HasPrefix(mt, "video/") {
		return true
	}
	_, ok := mediaExtensions[ext(c.Name)]
	return ok
}

// IsPDF reports whether c is a PDF document.
func IsPDF(c Candidate) bool {
	return normalizeMIME(c.Type) == "application/pdf" || ext(c.Name) == ".pdf"
}

// ImageMIME returns the canonical image MIME type for name, or "".
func ImageMIME(name string) string {
	return imageExtensions[ext(name)]
}

type verdict int

const (
	verdictUnknown verdict = iota
	verdictText
	verdictBinary
)

func mimeVerdict(raw string) verdict {
	mt := normalizeMIME(raw)
	switch {
	case mt == "", mt == "application/octet-stream":
		return verdictUnknown
	case strings.HasPrefix(mt, "text/"), mt == "image/svg+xml":
		return verdictText
	case strings.HasPrefix(mt, "image/"), strings.HasPrefix(mt, "audio/"),
		strings.HasPrefix(mt, "video/"), strings.HasPrefix(mt, "font/"):
		return verdictBinary
	}
	if _, ok := textApplicationTypes[mt]; ok {
		return verdictText
	}
	if strings.HasSuffix(mt, "+json") || strings.HasSuffix(mt, "+xml") {
		return verdictText
	}
	if _, ok := binaryApplicationTypes[mt]; ok {
		return verdictBinary
	}
	if strings.HasPrefix(mt, "application/vnd.openxmlformats") ||
		strings.HasPrefix(mt, "application/vnd.oasis.opendocument") {
		return verdictBinary
	}
	return verdictUnknown
}

func hasTextName(name string) bool {
	base := strings.ToLower(filepath.Base(name))
	if _, ok := textFilenames[base]; ok {
		return true
	}
	if _, ok := textExtensions[ext(base)]; ok {
		return true
	}
	// Dotfiles such as .prettierrc or .npmrc carry no extension of their own.
	if strings.HasPrefix(base, ".") && !strings.Contains(base[1:], ".") {
		return strings.HasSuffix(base, "rc") || strings.HasSuffix(base, "ignore")
	}
	return false
}

func normalizeMIME(raw string) string {
	mt := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt
}

func ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
