package render

import (
	"encoding/json"
	"fmt"

	"github.com/scbrown/blockwright/internal/model"
)

// BlocksSchemaVersion is the version written to and accepted from blocks
// documents.
const BlocksSchemaVersion = 1

// BlocksDocument is the flat, versioned record of a generated sequence. It is
// the hand-off format for tools that place blocks themselves.
type BlocksDocument struct {
	SchemaVersion int                 `json:"schema_version"`
	Difficulty    model.Difficulty    `json:"difficulty"`
	Explanation   string              `json:"explanation"`
	Blocks        []model.Instruction `json:"blocks"`
}

// Blocks renders a sequence as a BlocksDocument.
func Blocks(seq model.Sequence) string {
	blocks := seq.Instructions
	if blocks == nil {
		blocks = []model.Instruction{}
	}
	return marshalIndent(BlocksDocument{
		SchemaVersion: BlocksSchemaVersion,
		Difficulty:    seq.Difficulty,
		Explanation:   seq.Explanation,
		Blocks:        blocks,
	})
}

// DecodeBlocks reads a blocks document back into a sequence.
func DecodeBlocks(data []byte) (model.Sequence, error) {
	var doc BlocksDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.Sequence{}, fmt.Errorf("decode blocks document: %w", err)
	}
	if doc.SchemaVersion != BlocksSchemaVersion {
		return model.Sequence{}, fmt.Errorf("blocks document schema version %d (want %d)", doc.SchemaVersion, BlocksSchemaVersion)
	}
	seq := model.Sequence{
		Instructions: doc.Blocks,
		Explanation:  doc.Explanation,
		Difficulty:   doc.Difficulty,
	}
	if seq.Instructions == nil {
		seq.Instructions = []model.Instruction{}
	}
	for i := range seq.Instructions {
		if seq.Instructions[i].Inputs == nil {
			seq.Instructions[i].Inputs = map[string]model.Value{}
		}
		if seq.Instructions[i].Fields == nil {
			seq.Instructions[i].Fields = map[string]model.Value{}
		}
	}
	return seq, nil
}
