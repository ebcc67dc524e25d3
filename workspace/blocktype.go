package workspace

// BlockType declares a kind of block: its message template and fields, in
// the order they appear on the block.
type BlockType struct {
	Type    string
	Message string
	Fields  []FieldSpec
}
