package solana

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// SignatureInfo from getSignaturesForAddress.
type SignatureInfo struct {
	Signature string
	Slot      int64
	BlockTime *int64
	Err       interface{}
}

// SignaturesOpts defines optional pagination parameters for getSignaturesForAddress.
type SignaturesOpts struct {
	Before string // Start searching backwards from this signature
	Until  string // Search until this signature
	Limit  int    // Maximum number of signatures to return
}

// AccountKey is one entry of a jsonParsed message's account list.
type AccountKey struct {
	Pubkey   string `json:"pubkey"`
	Signer   bool   `json:"signer"`
	Writable bool   `json:"writable"`
	Source   string `json:"source,omitempty"` // transaction | lookupTable
}

// Instruction is a jsonParsed instruction. Parsed is nil for programs the
// node could not decode.
type Instruction struct {
	Program     string             `json:"program,omitempty"`
	ProgramID   string             `json:"programId"`
	Parsed      *ParsedInstruction `json:"parsed,omitempty"`
	Accounts    []string           `json:"accounts,omitempty"`
	Data        string             `json:"data,omitempty"`
	StackHeight *int               `json:"stackHeight,omitempty"`
}

// Type returns the parsed instruction type, or "".
func (ix Instruction) Type() string {
	if ix.Parsed == nil {
		return ""
	}
	return ix.Parsed.Type
}

// Info returns the parsed instruction payload, or nil.
func (ix Instruction) Info() ParsedInfo {
	if ix.Parsed == nil {
		return nil
	}
	return ix.Parsed.Info
}

// InnerInstructions groups the CPI instructions of one top-level instruction.
type InnerInstructions struct {
	Index        int           `json:"index"`
	Instructions []Instruction `json:"instructions"`
}

// TokenBalance is a pre or post token balance entry.
type TokenBalance struct {
	AccountIndex  int           `json:"accountIndex"`
	Mint          string        `json:"mint"`
	Owner         string        `json:"owner,omitempty"`
	ProgramID     string        `json:"programId,omitempty"`
	UITokenAmount UITokenAmount `json:"uiTokenAmount"`
}

// UITokenAmount is a raw token amount together with its decimals.
type UITokenAmount struct {
	Amount         string `json:"amount"`
	Decimals       uint8  `json:"decimals"`
	UIAmountString string `json:"uiAmountString,omitempty"`
}

// ParsedInstruction is the {type, info} object of a jsonParsed instruction.
type ParsedInstruction struct {
	Type string     `json:"type"`
	Info ParsedInfo `json:"info,omitempty"`
}

// UnmarshalJSON tolerates programs (memo) that report parsed as a plain string
// and keeps numbers exact.
func (p *ParsedInstruction) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		*p = ParsedInstruction{}
		return nil
	}
	var raw struct {
		Type string          `json:"type"`
		Info json.RawMessage `json:"info"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Type = raw.Type
	p.Info = nil
	if len(raw.Info) == 0 || raw.Info[0] != '{' {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw.Info))
	dec.UseNumber()
	var info map[string]interface{}
	if err := dec.Decode(&info); err != nil {
		return err
	}
	p.Info = info
	return nil
}

// ParsedInfo is the free-form info object of a parsed instruction.
type ParsedInfo map[string]interface{}

// String returns the string field key, or "".
func (i ParsedInfo) String(key string) string {
	s, _ := i[key].(string)
	return s
}

// Uint64 returns the numeric field key. Numbers may arrive as JSON numbers
// or decimal strings.
func (i ParsedInfo) Uint64(key string) (uint64, bool) {
	switch v := i[key].(type) {
	case json.Number:
		n, err := strconv.ParseUint(v.String(), 10, 64)
		return n, err == nil
	case string:
		n, err := strconv.ParseUint(v, 10, 64)
		return n, err == nil
	case float64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int:
		return uint64(v), v >= 0
	case int64:
		return uint64(v), v >= 0
	case uint64:
		return v, true
	default:
		return 0, false
	}
}

// TokenAmount returns the raw amount and decimals of a checked transfer's
// tokenAmount object.
func (i ParsedInfo) TokenAmount() (string, *uint8, bool) {
	var sub ParsedInfo
	switch v := i["tokenAmount"].(type) {
	case map[string]interface{}:
		sub = v
	case ParsedInfo:
		sub = v
	default:
		return "", nil, false
	}
	amount := sub.String("amount")
	if amount == "" {
		return "", nil, false
	}
	if d, ok := sub.Uint64("decimals"); ok && d <= 255 {
		dec := uint8(d)
		return amount, &dec, true
	}
	return amount, nil, true
}
