package attendance

import "errors"

var (
	ErrInvalidRules  = errors.New("invalid attendance rules")
	ErrInvalidPeriod = errors.New("invalid attendance period")
	ErrEmptyName     = errors.New("employee name is empty")
)
