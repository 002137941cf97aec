package contracts

import (
	"fmt"

	"praxis/internal/process"
)

// Report captures validation results for one catalog process.
type Report struct {
	ProcessID string
	Errors    []error
}

// IsValid reports whether the validation passed.
func (r *Report) IsValid() bool {
	return r != nil && len(r.Errors) == 0
}

// ValidateRegistry validates every process in the registry, in ID order.
func ValidateRegistry(registry *process.Registry) ([]*Report, error) {
	var reports []*Report
	for _, id := range registry.IDs() {
		p, err := registry.Resolve(id, nil)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", id, err)
		}
		reports = append(reports, &Report{
			ProcessID: id,
			Errors:    ValidateProcess(p),
		})
	}
	return reports, nil
}
