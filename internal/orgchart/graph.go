// Package orgchart answers reachability questions over the reporting
// graph stored in the role catalog. An edge means its source role
// reports to its target role.
package orgchart

import (
	"sort"

	"github.com/spec-kit/training-service/internal/domain"
)

// DirectReports returns the roles that report directly to role, sorted.
func DirectReports(role string, edges []domain.Edge) []string {
	reports := make([]string, 0)
	for _, e := range edges {
		if e.Target == role {
			reports = append(reports, e.Source)
		}
	}
	sort.Strings(reports)
	return reports
}

// SubordinateClosure returns every role that reports to role directly
// or through intermediaries, including role itself. The traversal
// tolerates cycles; an empty role yields an empty set.
func SubordinateClosure(role string, edges []domain.Edge) map[string]bool {
	closure := make(map[string]bool)
	if role == "" {
		return closure
	}

	reporters := make(map[string][]string, len(edges))
	for _, e := range edges {
		reporters[e.Target] = append(reporters[e.Target], e.Source)
	}

	stack := []string{role}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if closure[current] {
			continue
		}
		closure[current] = true
		stack = append(stack, reporters[current]...)
	}
	return closure
}

// Supervises reports whether supervisor's closure contains target.
func Supervises(supervisor, target string, edges []domain.Edge) bool {
	return SubordinateClosure(supervisor, edges)[target]
}
