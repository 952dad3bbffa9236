package pretrain

import "github.com/loom-ml/loom/internal/tensor"

// Batch field names produced by the collator.
const (
	FieldInputIDs           = "input_ids"
	FieldTokenTypeIDs       = "token_type_ids"
	FieldAttentionMask      = "attention_mask"
	FieldLabels             = "labels"
	FieldSentenceOrderLabel = "sentence_order_label"
)

// IgnoreLabel marks label positions excluded from the loss.
const IgnoreLabel int32 = -100

// Batch maps field names to tensors ready for a training step. 2-D fields
// are [batch, sequence]; 1-D fields are per-example scalars.
type Batch map[string]*tensor.Tensor[int32]

// FieldRole tags how a batch field is padded when the sequence dimension
// is extended to a multiple of the sequence-parallel world size.
type FieldRole int

// Field roles.
const (
	// RoleIDs pads with the tokenizer's pad id (also the default for
	// unknown 2-D fields).
	RoleIDs FieldRole = iota
	// RoleTypeIDs pads with segment id 1 (the trailing segment).
	RoleTypeIDs
	// RoleAttention pads with 0 (positions the model must ignore).
	RoleAttention
	// RoleLabels pads with the loss-ignore sentinel.
	RoleLabels
)

// fieldRoles maps every known 2-D field to its shard-padding role.
var fieldRoles = map[string]FieldRole{
	FieldInputIDs:      RoleIDs,
	FieldTokenTypeIDs:  RoleTypeIDs,
	FieldAttentionMask: RoleAttention,
	FieldLabels:        RoleLabels,
}

// shardFill returns the fill value used when right-padding a field's
// sequence dimension before sequence-parallel splitting.
func shardFill(field string, padID int32) int32 {
	switch fieldRoles[field] {
	case RoleLabels:
		return IgnoreLabel
	case RoleTypeIDs:
		return 1
	case RoleAttention:
		return 0
	default:
		return padID
	}
}
