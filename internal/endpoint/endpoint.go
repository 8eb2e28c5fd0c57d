// Package endpoint decodes driver endpoint filenames and checks the
// filesystem type of the directory entries the supervisor discovers.
// It mirrors parse_unix_socket_name_ from shell.c: strip the path, split
// on '.', validate the slot digits and the exact suffix, never allocating.
package endpoint

import (
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Identity is a driver's (name, slot) coordinate, borrowed from the input
// string passed to Parse — callers that need to retain it past the input's
// lifetime must copy Name themselves.
type Identity struct {
	Name string
	Slot uint64
}

// Parse decodes "<driver-name>.<slot>.<suffix>" out of name, which may carry
// a leading path. suffix is the exact configured constant (e.g. "drv").
// It returns ok=false for anything that doesn't match the grammar exactly —
// this is not an error return because a non-matching name is routine
// (unrelated files can legitimately sit in the base directory).
func Parse(name string, suffix string) (Identity, bool) {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}

	dot := strings.IndexByte(name, '.')
	if dot <= 0 {
		return Identity{}, false
	}
	driverName := name[:dot]
	rest := name[dot+1:]

	dot2 := strings.IndexByte(rest, '.')
	if dot2 <= 0 {
		return Identity{}, false
	}
	slotStr := rest[:dot2]
	suffixPart := rest[dot2+1:]

	if suffixPart != suffix {
		return Identity{}, false
	}
	if !isAllDigits(slotStr) {
		return Identity{}, false
	}

	slot, err := strconv.ParseUint(slotStr, 10, 64)
	if err != nil {
		return Identity{}, false
	}

	return Identity{Name: driverName, Slot: slot}, true
}

// Format is Parse's inverse, used by round-trip tests:
// parse(format(id, suffix)) == (id, true).
func Format(id Identity, suffix string) string {
	return id.Name + "." + strconv.FormatUint(id.Slot, 10) + "." + suffix
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// IsSocket reports whether path names a Unix-domain socket file, the way
// check_unix_socket in shell.c stats the entry and tests S_ISSOCK. It
// lstats rather than stats so a dangling symlink never misreports the link
// itself as a socket.
func IsSocket(path string) bool {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return false
	}
	return st.Mode&unix.S_IFMT == unix.S_IFSOCK
}
