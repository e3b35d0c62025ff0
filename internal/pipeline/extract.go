package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/room-matcher/backend/internal/models"
)

// The pipeline's reply shape is not fixed: depending on backend version the
// parsed profile arrives at the top level, nested under a generic "result"
// wrapper, or under a "profile" key. The ambiguity is a documented backend
// contract weakness; extraction tries a fixed ordered list of locations and
// the first non-null hit wins.
var profileLocations = []struct {
	name string
	path []string
}{
	{"parsed_profile", []string{"parsed_profile"}},
	{"result.parsed_profile", []string{"result", "parsed_profile"}},
	{"result.profile", []string{"result", "profile"}},
	{"profile", []string{"profile"}},
}

// ExtractProfile pulls the parsed profile out of a pipeline reply body.
// It fails when no documented location holds a non-null profile object.
func ExtractProfile(body []byte) (*models.ParsedProfile, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, &Error{Message: fmt.Sprintf("unparseable pipeline reply: %v", err)}
	}

	for _, loc := range profileLocations {
		raw, ok := lookupPath(root, loc.path)
		if !ok || isNull(raw) {
			continue
		}

		profile := &models.ParsedProfile{}
		if err := json.Unmarshal(raw, profile); err != nil {
			return nil, &Error{Message: fmt.Sprintf("malformed profile at %s: %v", loc.name, err)}
		}
		return profile, nil
	}

	return nil, &Error{Message: "backend did not return a parsed profile"}
}

// lookupPath descends through nested JSON objects along path.
func lookupPath(root map[string]json.RawMessage, path []string) (json.RawMessage, bool) {
	current := root
	for i, key := range path {
		raw, ok := current[key]
		if !ok {
			return nil, false
		}
		if i == len(path)-1 {
			return raw, true
		}

		next := map[string]json.RawMessage{}
		if err := json.Unmarshal(raw, &next); err != nil {
			return nil, false
		}
		current = next
	}
	return nil, false
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
