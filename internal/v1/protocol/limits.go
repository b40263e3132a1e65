package protocol

// Limits are the bit-exact defaults named by spec.md §4.7, plus the
// runtime constants §4.6 and §5 reference by name. MaxObjectsPerBoard has
// no numeric default in the source material ("fixed at spec level"); 5000
// is chosen here as the resolution (see DESIGN.md).
const (
	MaxMessageBytes     = 65536
	MaxBoardIDChars     = 128
	MaxUserIDChars      = 128
	MaxClientOpIDChars  = 128
	MaxTokenChars       = 4096
	MaxDisplayNameChars = 64
	MaxColorChars       = 32
	MaxSelectionIDs     = 200
	MaxTextChars        = 10000
	MaxStrokePoints     = 50000
	MaxObjectsPerBoard  = 5000

	MinStrokeWidth = 0.0
	MaxStrokeWidth = 200.0
	MinFontSize    = 1.0
	MaxFontSize    = 512.0
	MinZoom        = 0.01
	MaxZoom        = 100.0
)
