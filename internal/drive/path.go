package drive

import "strings"

// Normalize collapses "//", resolves "." and ".." components textually
// (no filesystem access), and preserves a trailing slash only for the
// root path "/". It does not require the input to already be absolute.
func Normalize(p string) string {
	if p == "" {
		return "/"
	}

	absolute := strings.HasPrefix(p, "/")
	parts := strings.Split(p, "/")

	stack := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, part)
		}
	}

	joined := strings.Join(stack, "/")
	if absolute {
		return "/" + joined
	}
	if joined == "" {
		return "/"
	}
	return joined
}

// IsAbsolute reports whether p begins with "/".
func IsAbsolute(p string) bool {
	return strings.HasPrefix(p, "/")
}

// Dirname returns the normalized parent of p. Dirname("/") is "/".
func Dirname(p string) string {
	n := Normalize(p)
	if n == "/" {
		return "/"
	}
	idx := strings.LastIndex(n, "/")
	if idx <= 0 {
		return "/"
	}
	return n[:idx]
}

// Basename returns the last path component of p. Basename("/") is "".
func Basename(p string) string {
	n := Normalize(p)
	if n == "/" {
		return ""
	}
	idx := strings.LastIndex(n, "/")
	return n[idx+1:]
}

// Join concatenates two path segments and normalizes the result.
func Join(a, b string) string {
	if b == "" {
		return Normalize(a)
	}
	if strings.HasPrefix(b, "/") {
		return Normalize(b)
	}
	if a == "/" {
		return Normalize("/" + b)
	}
	return Normalize(a + "/" + b)
}

// IsWithin reports whether child is strictly nested under parent, i.e.
// parent is a proper ancestor of child under component-wise comparison.
// IsWithin("/a", "/ab") is false even though "/ab" has the string prefix
// "/a"; IsWithin("/a", "/a/b") is true.
func IsWithin(parent, child string) bool {
	p := Normalize(parent)
	c := Normalize(child)

	if p == c {
		return false
	}
	if p == "/" {
		return c != "/"
	}
	return strings.HasPrefix(c, p+"/")
}
