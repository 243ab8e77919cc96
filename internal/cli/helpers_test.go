package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const redGreenItem = `name: red-green
pre-conditions:
  - name: Speed
    states:
      - name: Slow
      - name: Fast
  - name: Load
    states:
      - name: Empty
      - name: Full
post-conditions:
  - name: Result
    states:
      - name: Ok
      - name: Error
transition-map:
  - pre:  { Speed: Fast, Load: Full }
    post: { Result: Error }
  - pre:  { Speed: NA, Load: NA }
    post: { Result: Ok }
`

const incompleteItem = `name: incomplete
pre-conditions:
  - name: Mode
    states:
      - name: A
      - name: B
post-conditions:
  - name: Result
    states:
      - name: Ok
transition-map:
  - pre:  { Mode: A }
    post: { Result: Ok }
`

// writeItem writes an item document into dir and returns its path.
func writeItem(t *testing.T, dir, name, doc string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))
	return path
}