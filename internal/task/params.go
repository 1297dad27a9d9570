package task

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeParams parses structured parameters out of a completion
// answer. Models occasionally wrap JSON in a markdown fence; strip it
// before unmarshalling. A parse failure means the request text could
// not be turned into the operation's input contract.
func decodeParams(answer string, target any) error {
	s := strings.TrimSpace(answer)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	if err := json.Unmarshal([]byte(s), target); err != nil {
		return fmt.Errorf("%w: %v", ErrBadParams, err)
	}
	return nil
}
