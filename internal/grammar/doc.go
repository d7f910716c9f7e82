// Package grammar reads combo rule sources into an ordered rule list and a
// key binding table.
//
// # Text Format
//
// One rule per non-blank, non-comment line:
//
//	# comment
//	[BP] -> Claw Slam
//	[BP], [FP] -> Saibot Blast
//	Down, Right, [FP] -> Fireball
//
// Tokens are comma separated, trimmed and NFC-normalised; case is
// preserved. The first "->" separates the sequence from the label, so a
// label may itself contain "->".
//
// # CUE Format
//
// Files ending in .cue are evaluated with the CUE SDK:
//
//	combos: [
//		{keys: ["[BP]"], move: "Claw Slam"},
//		{keys: ["Down", "Right", "[FP]"], move: "Fireball"},
//	]
//	bindings: {
//		q:    "[BP]"
//		down: "Down"
//	}
//
// # Errors
//
// Every malformed line yields a *ParseError carrying the 1-based line
// number. Errors are never partial: a source either parses completely or
// produces no Grammar at all.
package grammar
