package domain

// EdgeTag classifies an edge for downstream matching.
type EdgeTag int

// Edge tags. Every edge carries exactly one.
const (
	TagNormal EdgeTag = iota
	TagDust
	TagFee
	TagTip
)

func (t EdgeTag) String() string {
	switch t {
	case TagNormal:
		return "normal"
	case TagDust:
		return "dust"
	case TagFee:
		return "fee"
	case TagTip:
		return "tip"
	default:
		return "unknown"
	}
}
