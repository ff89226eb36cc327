package skirmish

import "fmt"

// Rule violation codes. These form a closed set; clients may branch on them.
const (
	CodeNotFound              = "NOT_FOUND"
	CodeNotOwned              = "NOT_OWNED"
	CodeAlreadyActed          = "ALREADY_ACTED"
	CodeOutOfBounds           = "OUT_OF_BOUNDS"
	CodeTileOccupied          = "TILE_OCCUPIED"
	CodeUnreachable           = "UNREACHABLE"
	CodeOutOfRange            = "OUT_OF_RANGE"
	CodeFriendlyTarget        = "FRIENDLY_TARGET"
	CodeInvalidTarget         = "INVALID_TARGET"
	CodeInsufficientResources = "INSUFFICIENT_RESOURCES"
	CodeSpawnBlocked          = "SPAWN_BLOCKED"
	CodeNotAdjacent           = "NOT_ADJACENT"
	CodeWaterTile             = "WATER_TILE"
	CodeEnemyTile             = "ENEMY_TILE"
)

// RuleError is a deterministic rule violation: the command was well-formed
// but the game state forbids it. The code is stable and machine-readable;
// the message is for humans.
type RuleError struct {
	Code    string
	Message string
}

func (e *RuleError) Error() string {
	return e.Code + ": " + e.Message
}

func ruleErrf(code, format string, args ...any) *RuleError {
	return &RuleError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsRuleError returns the RuleError if err is one, else nil.
func IsRuleError(err error) *RuleError {
	if re, ok := err.(*RuleError); ok {
		return re
	}
	return nil
}
