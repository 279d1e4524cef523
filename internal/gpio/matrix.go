package gpio

import (
	"fmt"

	"github.com/sweeney/rgb-controller/internal/keypad"
)

// MatrixPins is the BCM wiring of a 4x4 membrane keypad.
type MatrixPins struct {
	Rows [4]int
	Cols [4]int
}

// DefaultMatrix matches the reference wiring.
var DefaultMatrix = MatrixPins{
	Rows: [4]int{5, 6, 13, 19},
	Cols: [4]int{12, 16, 20, 26},
}

// lineBank is a group of lines read or written together.
type lineBank interface {
	SetValues(values []int) error
	Values(values []int) error
}

var idleRows = []int{1, 1, 1, 1}

// scanMatrix pulls each row low in turn and returns the first key whose
// column reads low. Columns are pulled up, so an open matrix reads all ones.
// Rows are left high afterwards.
func scanMatrix(rows, cols lineBank) (keypad.Key, error) {
	drive := make([]int, len(idleRows))
	sense := make([]int, len(keypad.Layout[0]))

	for r := range keypad.Layout {
		copy(drive, idleRows)
		drive[r] = 0
		if err := rows.SetValues(drive); err != nil {
			return keypad.NoKey, fmt.Errorf("drive row %d: %w", r, err)
		}
		if err := cols.Values(sense); err != nil {
			return keypad.NoKey, fmt.Errorf("sense row %d: %w", r, err)
		}
		for c, v := range sense {
			if v == 0 {
				return keypad.Layout[r][c], rows.SetValues(idleRows)
			}
		}
	}
	return keypad.NoKey, rows.SetValues(idleRows)
}
