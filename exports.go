package ledger

import "github.com/careledger/ledger/types"

// Re-export common types for convenience so users don't have to import types package.

// Money is re-exported from types package.
type Money = types.Money

// Re-export Money constructors
var (
	Cents           = types.Cents
	ParseAmount     = types.ParseAmount
	MustParseAmount = types.MustParseAmount
	Sum             = types.Sum
)
