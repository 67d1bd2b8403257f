package vm

import "blocklang/value"

// loopFrame is the VM-side bookkeeping installed by `WhileStart`/
// `ForStart`/`ForeachStart` and consulted by the matching `*Test`/`*Iter`/
// `LoopIncr`/`LoopEnd` instructions. A single shape serves all three loop
// kinds (rather than an interface per kind) since the instruction set
// already enumerates exactly three, and a shared struct keeps LoopIncr/
// LoopEnd — which don't care which loop kind they're closing — kind-
// agnostic.
type loopFrame struct {
	stackVals int // values LoopIncr has counted since loop entry

	// for-loop state, set by ForStart, read by ForTest, advanced by ForIter.
	forIdent string
	forCur   float64
	forEnd   float64
	forStep  float64

	// foreach-loop state, set by ForeachStart and advanced by ForeachIter.
	foreachIdent string
	foreachItems []value.Value
	foreachIdx   int
}

// catchFrame is the VM-side bookkeeping installed by `StartCatch`: the
// stack/loop-stack depths to truncate back to on a throw, and the
// instruction address to resume at afterward.
type catchFrame struct {
	stackDepth int
	loopDepth  int
	endTarget  int
}
