package core

import (
	"errors"
)

var (
	ErrNoQueues               = errors.New("device has no hardware queues")
	ErrUnsupportedShaderStage = errors.New("shader stage not supported in the graphics pipeline path")
	ErrMissingVertexStage     = errors.New("render pipeline requires a vertex stage")
	ErrNoSuitableMemoryType   = errors.New("no suitable memory type")
)
