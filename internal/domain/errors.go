package domain

import "fmt"

// EngineError is the unified error type for the engine.
// Each error has a numeric code and human-readable message.
type EngineError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return fmt.Sprintf("engine error %d: %s", e.Code, e.Message)
}

// NewEngineError creates a new EngineError.
func NewEngineError(code int, msg string) *EngineError {
	return &EngineError{Code: code, Message: msg}
}

// WrapEngineError creates an EngineError that includes a cause.
func WrapEngineError(code int, msg string, cause error) *EngineError {
	return &EngineError{Code: code, Message: fmt.Sprintf("%s: %v", msg, cause)}
}

// ---- Battle / state machine errors (-32010 to -32039) ----

var (
	ErrBattleNotFound    = &EngineError{Code: -32010, Message: "battle not found"}
	ErrBattleNotActive   = &EngineError{Code: -32011, Message: "battle is not active"}
	ErrBattleTerminal    = &EngineError{Code: -32012, Message: "battle already reached a terminal status"}
	ErrInvalidTransition = &EngineError{Code: -32013, Message: "invalid battle status transition"}
	ErrInvalidMode       = &EngineError{Code: -32014, Message: "invalid battle mode"}
	ErrOptimisticLock    = &EngineError{Code: -32015, Message: "optimistic lock conflict: battle was modified concurrently"}
	ErrNotSessionOwner   = &EngineError{Code: -32016, Message: "battle belongs to a different player"}
)

// ---- Verse / chain errors (-32040 to -32069) ----

var (
	ErrEmptyAnswer   = &EngineError{Code: -32040, Message: "answer has no usable content"}
	ErrEmptyPrevious = &EngineError{Code: -32041, Message: "chain validation against an empty previous verse"}
)

// ---- Corpus errors (-32070 to -32099) ----

var (
	ErrNoPoemAvailable = &EngineError{Code: -32070, Message: "no poem with enough usable lines available"}
	ErrCorpusQuery     = &EngineError{Code: -32071, Message: "corpus lookup failed"}
)

// ---- Generator errors (-32100 to -32129) ----

var (
	ErrGeneratorUnavailable = &EngineError{Code: -32100, Message: "verse generator unavailable"}
	ErrGeneratorGaveUp      = &EngineError{Code: -32101, Message: "verse generator could not produce a valid verse"}
)

// ---- Store / config errors (-32130 to -32159) ----

var (
	ErrStoreInit     = &EngineError{Code: -32130, Message: "failed to initialize store"}
	ErrStoreQuery    = &EngineError{Code: -32131, Message: "store query failed"}
	ErrStoreWrite    = &EngineError{Code: -32132, Message: "store write failed"}
	ErrConfigInvalid = &EngineError{Code: -32133, Message: "invalid configuration"}
)
