package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// IDList is an ordered list of user ids. It decodes from a JSON array of
// numbers or from a comma separated string ("2, 3"), the format the old
// collaborator and member fields used.
type IDList []uint

func ParseIDList(s string) (IDList, error) {
	ids := IDList{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, uint(id))
	}
	return ids.Dedup(), nil
}

func (l *IDList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		ids, err := ParseIDList(s)
		if err != nil {
			return err
		}
		*l = ids
		return nil
	}
	var raw []uint64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("id list must be an array of ids or a comma separated string: %w", err)
	}
	ids := make(IDList, len(raw))
	for i, id := range raw {
		if id == 0 || id > math.MaxUint32 {
			return fmt.Errorf("invalid id %d", id)
		}
		ids[i] = uint(id)
	}
	*l = ids.Dedup()
	return nil
}

// Dedup drops repeated ids, keeping the first occurrence.
func (l IDList) Dedup() IDList {
	seen := make(map[uint]bool, len(l))
	out := make(IDList, 0, len(l))
	for _, id := range l {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (l IDList) String() string {
	parts := make([]string, len(l))
	for i, id := range l {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ", ")
}
