// Package location joins schema locations.
//
// Schema documents refer to each other with relative or absolute
// locations, which may be file paths or URLs. Resolve computes the
// location of an imported document from the location of the document
// that imports it. Windows drive letters and UNC volumes are recognized
// on every platform, since schema sets are frequently authored on one
// and consumed on another.
package location // import "github.com/CognitoIQ/xsdtypes/location"

import (
	"net/url"
	"path"
	"strings"
)

// Resolve returns the location of target relative to source.
//
// An absolute target (a URL, a drive-letter path or a UNC path) is
// used as is. A target starting with a slash is resolved against the
// root of source: its scheme and host, drive, UNC volume or the file
// system root. Any other target is resolved against the directory
// containing source; a source without a file extension is taken to be
// a directory already. The joined location has its "." segments
// removed and each ".." segment removes the segment before it; ".."
// segments with nothing left to remove are dropped.
func Resolve(source, target string) string {
	if t, err := url.PathUnescape(target); err == nil {
		target = t
	}
	source = normalizeSource(source)
	if hasExtension(source) {
		source = dir(source)
	}

	var joined string
	switch {
	case IsAbsolute(target):
		joined = target
	case strings.HasPrefix(target, "/") || strings.HasPrefix(target, `\`):
		joined = Root(source) + strings.ReplaceAll(target, `\`, "/")
	case source == "":
		joined = strings.ReplaceAll(target, `\`, "/")
	case strings.HasSuffix(source, "/"):
		joined = source + strings.ReplaceAll(target, `\`, "/")
	default:
		joined = source + "/" + strings.ReplaceAll(target, `\`, "/")
	}
	return clean(joined)
}

// IsURL reports whether s is an absolute URL with a scheme. Single
// letter schemes are drive letters, not URLs.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || len(u.Scheme) < 2 {
		return false
	}
	return u.Host != "" || u.Scheme == "file"
}

// IsAbsolute reports whether s is a URL, a path starting with a drive
// letter, or a UNC path.
func IsAbsolute(s string) bool {
	return IsURL(s) || isDrive(s) || isUNC(s)
}

func isDrive(s string) bool {
	if len(s) < 2 || s[1] != ':' {
		return false
	}
	c := s[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isUNC(s string) bool {
	return strings.HasPrefix(s, `\\`) || (strings.HasPrefix(s, "//") && !IsURL(s))
}

// Root returns the part of s that a root-relative location is
// resolved against: scheme://host for URLs, "C:" for drive paths, the
// volume for UNC paths and the empty string for other paths.
func Root(s string) string {
	if IsURL(s) {
		u, err := url.Parse(s)
		if err == nil {
			return u.Scheme + "://" + u.Host
		}
	}
	if isDrive(s) {
		return s[:2]
	}
	if isUNC(s) {
		s = strings.ReplaceAll(s, `\`, "/")
		if i := strings.IndexByte(s[2:], '/'); i >= 0 {
			return s[:i+2]
		}
		return s
	}
	return ""
}

// normalizeSource converts backslashes and collapses runs of slashes,
// leaving the slashes after a URL scheme and a leading UNC double
// slash intact.
func normalizeSource(s string) string {
	unc := isUNC(s)
	s = strings.ReplaceAll(s, `\`, "/")
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '/' && i > 0 && s[i-1] == '/' {
			if (i == 1 && unc) || afterScheme(s, i) {
				b.WriteByte('/')
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// afterScheme reports whether the slash at i belongs to the run of
// slashes following a URL scheme, as in file:///path.
func afterScheme(s string, i int) bool {
	j := i
	for j > 0 && s[j-1] == '/' {
		j--
	}
	return j >= 3 && s[j-1] == ':'
}

func hasExtension(s string) bool {
	p := s
	if IsURL(s) {
		if u, err := url.Parse(s); err == nil {
			p = u.Path
		}
	}
	return path.Ext(p) != ""
}

func dir(s string) string {
	i := strings.LastIndexByte(s, '/')
	switch {
	case i < 0:
		return "."
	case i == 0:
		return "/"
	}
	return s[:i]
}

func clean(p string) string {
	parts := strings.Split(p, "/")
	safe := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case ".":
		case "..":
			if len(safe) > 0 {
				safe = safe[:len(safe)-1]
			}
		default:
			safe = append(safe, part)
		}
	}
	return strings.Join(safe, "/")
}
