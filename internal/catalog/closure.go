package catalog

import (
	"github.com/elwood/romcat/internal/catalogxml"
)

// newClosureResolver returns a memoized, cycle-safe function computing the
// transitive set of device machines a machine depends on, exclusive of the
// machine itself, in order of first discovery. A re-entry onto a node
// already being resolved (a device_ref cycle) contributes nothing further.
func newClosureResolver(byName map[string]*catalogxml.MachineRecord) func(string) ([]string, error) {
	memo := map[string][]string{}
	visiting := map[string]bool{}

	var resolve func(name string) []string
	resolve = func(name string) []string {
		if closure, ok := memo[name]; ok {
			return closure
		}
		if visiting[name] {
			return nil
		}
		visiting[name] = true
		defer delete(visiting, name)

		m, ok := byName[name]
		if !ok {
			memo[name] = nil
			return nil
		}

		seen := map[string]bool{name: true}
		var closure []string
		for _, devName := range m.DeviceRefs {
			if seen[devName] {
				continue
			}
			seen[devName] = true
			closure = append(closure, devName)

			for _, s := range resolve(devName) {
				if !seen[s] {
					seen[s] = true
					closure = append(closure, s)
				}
			}
		}

		memo[name] = closure
		return closure
	}

	return func(name string) ([]string, error) {
		return resolve(name), nil
	}
}
