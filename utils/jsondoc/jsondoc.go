package jsondoc

import (
	"xaisentinel.com/xrs/utils"
	"encoding/json"
	"fmt"
	jsonpatch "github.com/evanphx/json-patch"
)

// Task documents in Redis are shared with other services, so a writer
// may only touch the fields it owns. Fill and Apply implement that
// contract: a struct sees the fields it declares, and Apply writes back
// a merge patch covering only the fields the update actually changed.

func Fill(stored []byte, doc interface{}) error {
	if len(stored) == 0 {
		stored = []byte("{}")
	}
	if err := json.Unmarshal(stored, doc); err != nil {
		return fmt.Errorf("failed to parse stored document: %w", err)
	}
	return nil
}

// Apply fills doc from stored, runs update on it and returns stored
// with the resulting merge patch applied. Keys stored holds beyond the
// fields of doc survive untouched. Setting a pointer field to nil
// removes its key (merge patch null semantics).
func Apply(stored []byte, doc interface{}, update func()) ([]byte, error) {
	if len(stored) == 0 {
		stored = []byte("{}")
	}
	if err := Fill(stored, doc); err != nil {
		return nil, err
	}
	before, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize document: %w", err)
	}
	if err := runUpdate(update); err != nil {
		return nil, err
	}
	after, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize updated document: %w", err)
	}
	patch, err := jsonpatch.CreateMergePatch(before, after)
	if err != nil {
		return nil, fmt.Errorf("failed to diff document updates: %w", err)
	}
	merged, err := jsonpatch.MergePatch(stored, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to merge document updates: %w", err)
	}
	return merged, nil
}

func runUpdate(update func()) (err error) {
	if update == nil {
		return nil
	}
	defer utils.RecoverWithError(&err)
	update()
	return
}
