package validators

import (
	"github.com/shijuleon/allot/domain/core/entities"
	"github.com/shijuleon/allot/domain/core/valueobjects"

	"go.uber.org/zap"
)

// CapacityViolation describes a host reporting more usage than capacity
type CapacityViolation struct {
	Identifier string
	Capacity   string
	Used       string
}

// CapacityValidator checks used <= capacity for every host. It only reports:
// a violation is logged, never returned as an error, and the caller is free
// to persist the record anyway.
type CapacityValidator struct {
	logger *zap.Logger
}

// NewCapacityValidator creates a new capacity validator
func NewCapacityValidator(logger *zap.Logger) *CapacityValidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CapacityValidator{logger: logger}
}

// Validate emits one warning per offending host and returns the violations
// so callers can count them. Hosts whose figures are not numbers get their
// own warning and are not counted.
func (v *CapacityValidator) Validate(hosts []entities.Host) []CapacityViolation {
	var violations []CapacityViolation

	for _, host := range hosts {
		used, usedErr := valueobjects.ParseNumeral(host.Used)
		capacity, capErr := valueobjects.ParseNumeral(host.Capacity)
		if usedErr != nil || capErr != nil {
			v.logger.Warn("Cannot compare used and capacity",
				zap.String("identifier", host.Identifier),
				zap.String("used", host.Used),
				zap.String("capacity", host.Capacity),
			)
			continue
		}

		if used.GreaterThan(capacity) {
			v.logger.Warn("Used can't be greater than capacity",
				zap.String("identifier", host.Identifier),
				zap.String("used", host.Used),
				zap.String("capacity", host.Capacity),
			)
			violations = append(violations, CapacityViolation{
				Identifier: host.Identifier,
				Capacity:   host.Capacity,
				Used:       host.Used,
			})
		}
	}

	return violations
}
