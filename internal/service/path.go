package service

import (
	"path"
	"strings"
)

// OwnerPrefix is the storage key prefix of every object owned by email.
func OwnerPrefix(email string) string {
	return email + "/"
}

// ResolvePath turns a user supplied path and the uploaded filename into the
// key relative to the owner prefix.
//
// A path whose last segment contains a dot names the target file itself;
// any other path is a folder and the filename is appended. Empty, "." and ".."
// segments are dropped so the result never climbs out of the owner prefix.
func ResolvePath(rawPath, filename string) string {
	name := baseName(filename)
	segs := cleanSegments(rawPath)

	if len(segs) == 0 {
		return name
	}
	if strings.Contains(segs[len(segs)-1], ".") {
		return strings.Join(segs, "/")
	}
	return strings.Join(append(segs, name), "/")
}

func baseName(filename string) string {
	segs := cleanSegments(filename)
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

func cleanSegments(p string) []string {
	p = strings.ReplaceAll(p, `\`, "/")
	parts := strings.Split(p, "/")
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		if s == "" || s == "." || s == ".." {
			continue
		}
		out = append(out, s)
	}
	return out
}

// hasExtension reports whether identifier looks like a file path.
func hasExtension(identifier string) bool {
	return path.Ext(identifier) != ""
}
