package casting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ProposalID identifies a proposal within an event. The zero value is the
// distinguished "main" proposal; named proposals have positive IDs.
type ProposalID int

// MainProposal is the single validated working set
const MainProposal ProposalID = 0

const mainProposalKey = "main"

func (id ProposalID) IsMain() bool {
	return id == MainProposal
}

func (id ProposalID) String() string {
	if id.IsMain() {
		return mainProposalKey
	}
	return strconv.Itoa(int(id))
}

// ParseProposalID accepts "main" or a positive integer
func ParseProposalID(s string) (ProposalID, error) {
	s = strings.TrimSpace(s)
	if s == mainProposalKey {
		return MainProposal, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q is not a proposal id", ErrInvalidProposal, s)
	}
	return ProposalID(n), nil
}

// MarshalText is used for JSON object keys
func (id ProposalID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ProposalID) UnmarshalText(text []byte) error {
	parsed, err := ParseProposalID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// MarshalJSON writes "main" for the main proposal and a bare number otherwise
func (id ProposalID) MarshalJSON() ([]byte, error) {
	if id.IsMain() {
		return json.Marshal(mainProposalKey)
	}
	return json.Marshal(int(id))
}

// UnmarshalJSON accepts a number, "main", or a numeric string. Browsers read
// proposal IDs from data attributes, so they usually arrive as strings.
func (id *ProposalID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return id.UnmarshalText([]byte(s))
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %s is not a proposal id", ErrInvalidProposal, string(data))
	}
	if n <= 0 {
		return fmt.Errorf("%w: %d is not a proposal id", ErrInvalidProposal, n)
	}
	*id = ProposalID(n)
	return nil
}

// Proposal is a named, independent draft of role assignments
type Proposal struct {
	ID   ProposalID `json:"id"`
	Name string     `json:"name"`
}
