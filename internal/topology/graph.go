package topology

import "fmt"

// sortResources orders resources so every resource follows its dependencies,
// using a DFS over DependsOn. Ties keep declaration order. It fails on
// duplicate logical ids, unknown dependencies, and cycles.
func sortResources(resources []Resource) ([]Resource, error) {
	byID := make(map[string]Resource, len(resources))
	for _, r := range resources {
		if _, dup := byID[r.LogicalID]; dup {
			return nil, fmt.Errorf("duplicate logical id %q", r.LogicalID)
		}
		byID[r.LogicalID] = r
	}

	var sorted []Resource
	tempmark := make(map[string]bool) // on the current DFS path; seeing one again is a cycle
	mark := make(map[string]bool)     // already emitted

	var visit func(id string, path []string) error
	visit = func(id string, path []string) error {
		if tempmark[id] {
			return fmt.Errorf("%w: %v", ErrCycle, append(path, id))
		}
		if mark[id] {
			return nil
		}
		r, ok := byID[id]
		if !ok {
			return fmt.Errorf("resource %q depends on unknown resource %q", path[len(path)-1], id)
		}
		tempmark[id] = true
		for _, dep := range r.DependsOn {
			if err := visit(dep, append(path, id)); err != nil {
				return err
			}
		}
		tempmark[id] = false
		mark[id] = true
		sorted = append(sorted, r)
		return nil
	}

	for _, r := range resources {
		if err := visit(r.LogicalID, nil); err != nil {
			return nil, err
		}
	}
	return sorted, nil
}
