package topology

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// StepOp is the kind of change a step applies.
type StepOp string

const (
	OpSame    StepOp = "same"    // nothing to do.
	OpCreate  StepOp = "create"  // creating a new resource.
	OpUpdate  StepOp = "update"  // updating an existing resource in place.
	OpReplace StepOp = "replace" // the resource type changed.
	OpDelete  StepOp = "delete"  // deleting a resource no longer planned.
)

// Step types for template inputs that are not resources.
const (
	StepTypeParameter = "Parameter"
	StepTypeTemplate  = "Template"
)

// DescriptionStepID identifies the template description in a Step.
const DescriptionStepID = "Description"

// Step is the change to one resource or template input between two plans.
type Step struct {
	Op        StepOp `json:"op"`
	LogicalID string `json:"logical_id"`
	Type      string `json:"type"`
}

// Diff compares two plans resource by resource. A nil prev means nothing is
// deployed yet. Steps follow next's dependency order, then changed template
// inputs, then deletions.
func Diff(prev, next *Plan) ([]Step, error) {
	before := make(map[string]Resource)
	if prev != nil {
		for _, r := range prev.Resources {
			before[r.LogicalID] = r
		}
	}

	var steps []Step
	seen := make(map[string]bool)
	for _, r := range next.Resources {
		seen[r.LogicalID] = true
		old, ok := before[r.LogicalID]
		switch {
		case !ok:
			steps = append(steps, Step{Op: OpCreate, LogicalID: r.LogicalID, Type: r.Type})
		case old.Type != r.Type:
			steps = append(steps, Step{Op: OpReplace, LogicalID: r.LogicalID, Type: r.Type})
		default:
			same, err := sameResource(old, r)
			if err != nil {
				return nil, err
			}
			op := OpUpdate
			if same {
				op = OpSame
			}
			steps = append(steps, Step{Op: op, LogicalID: r.LogicalID, Type: r.Type})
		}
	}

	if prev != nil {
		steps = append(steps, inputSteps(prev.Config, next.Config)...)
		for i := len(prev.Resources) - 1; i >= 0; i-- {
			r := prev.Resources[i]
			if !seen[r.LogicalID] {
				steps = append(steps, Step{Op: OpDelete, LogicalID: r.LogicalID, Type: r.Type})
			}
		}
	}
	return steps, nil
}

// inputSteps reports template inputs that changed outside the resource graph.
// Unchanged inputs produce no step.
func inputSteps(prev, next Config) []Step {
	var steps []Step
	if op, ok := inputOp(prev.DistributionID, next.DistributionID); ok {
		steps = append(steps, Step{Op: op, LogicalID: ExistingDistributionParam, Type: StepTypeParameter})
	}
	if op, ok := inputOp(prev.Description, next.Description); ok {
		steps = append(steps, Step{Op: op, LogicalID: DescriptionStepID, Type: StepTypeTemplate})
	}
	return steps
}

func inputOp(prev, next string) (StepOp, bool) {
	switch {
	case prev == next:
		return OpSame, false
	case prev == "":
		return OpCreate, true
	case next == "":
		return OpDelete, true
	default:
		return OpUpdate, true
	}
}

// sameResource compares the canonical JSON of two resources. Going through
// JSON makes a plan read back from disk equal to a freshly computed one.
func sameResource(a, b Resource) (bool, error) {
	ja, err := json.Marshal(a)
	if err != nil {
		return false, fmt.Errorf("encoding %s: %w", a.LogicalID, err)
	}
	jb, err := json.Marshal(b)
	if err != nil {
		return false, fmt.Errorf("encoding %s: %w", b.LogicalID, err)
	}
	return bytes.Equal(ja, jb), nil
}

// HasChanges reports whether any step does something.
func HasChanges(steps []Step) bool {
	for _, s := range steps {
		if s.Op != OpSame {
			return true
		}
	}
	return false
}

// SaveState writes the plan as JSON so a later run can diff against it.
func SaveState(path string, p *Plan) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing plan state: %w", err)
	}
	return nil
}

// LoadState reads a plan written by SaveState. A missing file yields nil
// without error.
func LoadState(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading plan state: %w", err)
	}
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding plan state %s: %w", path, err)
	}
	return &p, nil
}
