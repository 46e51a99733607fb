package loader

// Stage is a step of the per-file state machine. Stages run in declaration
// order. How a file ended is its Result.Status; Result.Stage is the last
// stage it entered.
type Stage int

const (
	Start Stage = iota
	HeaderCheck
	RowValidation
	Parse
	Normalize
	ClassifyAndClean
	NullCoercion
	Write
)

var stageNames = [...]string{
	Start:            "START",
	HeaderCheck:      "HEADER_CHECK",
	RowValidation:    "ROW_VALIDATION",
	Parse:            "PARSE",
	Normalize:        "NORMALIZE",
	ClassifyAndClean: "CLASSIFY_AND_CLEAN",
	NullCoercion:     "NULL_COERCION",
	Write:            "WRITE",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "UNKNOWN"
	}
	return stageNames[s]
}
