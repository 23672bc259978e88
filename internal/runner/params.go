package runner

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/specialistvlad/burstflow/internal/graph"
)

var validate = validator.New()

// DecodeParams copies node params into target, a pointer to a struct with
// json tags, then checks its validate tags.
func DecodeParams(node graph.Node, target any) error {
	raw, err := json.Marshal(node.Descriptor.Params)
	if err != nil {
		return fmt.Errorf("node '%s': failed to encode params: %w", node.ID, err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("node '%s': invalid params: %w", node.ID, err)
	}
	if err := validate.Struct(target); err != nil {
		return fmt.Errorf("node '%s': invalid params: %w", node.ID, err)
	}
	return nil
}
