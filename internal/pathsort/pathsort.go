// Package pathsort implements the case-insensitive, files-before-subdirs
// comparison used to order a ROM's filesystem entries before the File-Name
// Table is built.
//
// Grounded on source/layout.c's compare_files/strncmp_i in the original C
// implementation: paths are compared component-wise, case-insensitively,
// and at the depth where one path terminates (a file) while the other
// continues into a subdirectory, the terminating path always sorts first —
// the file-vs-subdir outcome is never decided by alphabetical order.
package pathsort

import "strings"

// Compare compares two POSIX-style target paths (each starting with "/")
// component-wise, case-insensitively. It returns a negative number if a
// sorts before b, a positive number if b sorts before a, and 0 if equal.
//
// At the depth where one path ends (a file) and the other descends further
// (a subdirectory), the file always sorts first, regardless of how its name
// compares lexicographically to the subdirectory's name.
func Compare(a, b string) int {
	ca := strings.TrimPrefix(a, "/")
	cb := strings.TrimPrefix(b, "/")

	for {
		compA, restA, moreA := cut(ca)
		compB, restB, moreB := cut(cb)

		switch {
		case !moreA && !moreB:
			return compareFold(compA, compB)
		case !moreA && moreB:
			return -1 // a is the file at this depth: it wins
		case moreA && !moreB:
			return 1
		}

		if c := compareFold(compA, compB); c != 0 {
			return c
		}
		ca, cb = restA, restB
	}
}

// cut splits s at the first '/', returning the component before it, the
// remainder after it, and whether a separator was found at all.
func cut(s string) (component, rest string, hasMore bool) {
	if i := strings.IndexByte(s, '/'); i >= 0 {
		return s[:i], s[i+1:], true
	}
	return s, "", false
}

// compareFold performs a case-insensitive byte-wise comparison of two path
// components, shorter-is-less when one is a strict prefix of the other.
func compareFold(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ca, cb := lower(a[i]), lower(b[i])
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// EqualFold reports whether two target paths are equal under the same
// case-insensitive rule Compare uses, useful for duplicate-path detection.
func EqualFold(a, b string) bool {
	return Compare(a, b) == 0
}
