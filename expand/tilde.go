package expand

import "os/user"

// lookupUserHomeDir resolves ~user by consulting the system's user
// database, per spec.md §4.5 phase 1. Grounded on the teacher's own
// use of os/user for the same purpose in its (now-removed) expand.go.
func lookupUserHomeDir(name string) (string, bool) {
	u, err := user.Lookup(name)
	if err != nil {
		return "", false
	}
	return u.HomeDir, true
}
