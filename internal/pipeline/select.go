package pipeline

import (
	"fmt"

	"github.com/jpbarto/cicd-local/internal/domain"
)

// ParseStageKind resolves a stage name from the CLI into a StageKind.
func ParseStageKind(name string) (domain.StageKind, error) {
	kind := domain.StageKind(name)
	for _, known := range domain.StageOrder {
		if kind == known {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown stage '%s' (valid stages: %v)", name, stageNames(domain.StageOrder))
}

// SelectStages builds the execution plan for a run. With both arguments
// empty it selects every stage. A non-empty from selects the suffix of
// the pipeline starting at that stage; a non-empty only selects exactly
// that one stage. The two are mutually exclusive.
func SelectStages(from, only string) ([]domain.StageKind, error) {
	if from != "" && only != "" {
		return nil, fmt.Errorf("--from and --only are mutually exclusive")
	}

	if only != "" {
		kind, err := ParseStageKind(only)
		if err != nil {
			return nil, err
		}
		return []domain.StageKind{kind}, nil
	}

	if from != "" {
		kind, err := ParseStageKind(from)
		if err != nil {
			return nil, err
		}
		for i, known := range domain.StageOrder {
			if known == kind {
				plan := make([]domain.StageKind, len(domain.StageOrder[i:]))
				copy(plan, domain.StageOrder[i:])
				return plan, nil
			}
		}
	}

	plan := make([]domain.StageKind, len(domain.StageOrder))
	copy(plan, domain.StageOrder)
	return plan, nil
}
