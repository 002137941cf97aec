package contracts

import (
	"fmt"

	"praxis/internal/process"
)

// ValidateProcess checks a catalog process against the structural rules
// every process must satisfy before the runner will accept it.
func ValidateProcess(p process.Process) []error {
	var errs []error
	if p == nil {
		return []error{fmt.Errorf("process is nil")}
	}

	info := p.Info()
	if err := info.Validate(); err != nil {
		errs = append(errs, err)
	}

	defs := p.Tasks()
	if len(defs) == 0 {
		errs = append(errs, fmt.Errorf("process declares no tasks"))
	}
	seenTasks := map[string]struct{}{}
	for index, def := range defs {
		if def == nil {
			errs = append(errs, fmt.Errorf("tasks[%d] is nil", index))
			continue
		}
		if err := def.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("tasks[%d] (%s): %w", index, def.Name, err))
			continue
		}
		if _, exists := seenTasks[def.Name]; exists {
			errs = append(errs, fmt.Errorf("tasks[%d].name duplicates %q", index, def.Name))
		}
		seenTasks[def.Name] = struct{}{}
		if _, ok := ContractForAgent(def.Agent); !ok {
			errs = append(errs, fmt.Errorf("tasks[%d] (%s): no contract for agent %q", index, def.Name, def.Agent))
		}
	}

	outputs := p.Outputs()
	if len(outputs) == 0 {
		errs = append(errs, fmt.Errorf("process declares no report fields"))
	}
	seenOutputs := map[string]struct{}{}
	for index, name := range outputs {
		if name == "" {
			errs = append(errs, fmt.Errorf("outputs[%d] is empty", index))
			continue
		}
		if _, exists := seenOutputs[name]; exists {
			errs = append(errs, fmt.Errorf("outputs[%d] duplicates %q", index, name))
		}
		seenOutputs[name] = struct{}{}
	}

	return errs
}

// ValidateReport checks a finished report against the process's declared
// fields: every declared field present, no undeclared extras.
func ValidateReport(p process.Process, report process.Report) []error {
	var errs []error
	declared := map[string]struct{}{}
	for _, name := range p.Outputs() {
		declared[name] = struct{}{}
		if _, ok := report.Fields[name]; !ok {
			errs = append(errs, fmt.Errorf("report is missing declared field %q", name))
		}
	}
	for _, name := range report.FieldNames() {
		if _, ok := declared[name]; !ok {
			errs = append(errs, fmt.Errorf("report carries undeclared field %q", name))
		}
	}
	return errs
}
