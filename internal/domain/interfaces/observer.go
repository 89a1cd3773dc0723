package interfaces

import (
	"time"

	domaintypes "sealkv/internal/domain/types"
)

// Observer receives store activity for instrumentation.
type Observer interface {
	ObserveOp(scope domaintypes.Scope, op string, err error, took time.Duration)
	StoreOpened(scope domaintypes.Scope)
	StoreClosed(scope domaintypes.Scope)
}
