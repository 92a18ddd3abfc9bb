package blockext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MathMachine_Begin(t *testing.T) {
	m := NewMathMachine(nil)

	t.Run("should open on the first matching delimiter candidate", func(t *testing.T) {
		blk := m.Begin(line("$$"))
		require.NotNil(t, blk)
		assert.Equal(t, "$$", blk.(*MathBlock).Delim.Open)

		blk = m.Begin(line(`\[`))
		require.NotNil(t, blk)
		assert.Equal(t, `\]`, blk.(*MathBlock).Delim.Close)
	})

	t.Run("should refuse lines without an opener", func(t *testing.T) {
		assert.Nil(t, m.Begin(line("x = 1")))
	})

	t.Run("should complete on a same-line closer", func(t *testing.T) {
		blk := m.Begin(line(`$$e^{i\pi}+1=0$$`))
		require.NotNil(t, blk)
		assert.True(t, blk.Done())
		assert.Equal(t, `$$e^{i\pi}+1=0$$`, blk.(*MathBlock).Raw())
	})

	t.Run("should keep trailing text after a same-line closer", func(t *testing.T) {
		blk := m.Begin(line(`\[a\] tail`))
		require.NotNil(t, blk)
		assert.True(t, blk.Done())
		assert.Equal(t, `\[a\] tail`, blk.(*MathBlock).Raw())
	})

	t.Run("should not close on an escaped closer", func(t *testing.T) {
		blk := m.Begin(line(`\[a \\] b`))
		require.NotNil(t, blk)
		assert.False(t, blk.Done())
	})
}

func Test_MathMachine_Continue(t *testing.T) {
	m := NewMathMachine(nil)

	t.Run("should accumulate body lines verbatim", func(t *testing.T) {
		blk := feed(t, m, "$$", "x^2", "$$")
		assert.Equal(t, "$$\nx^2\n$$", blk.(*MathBlock).Raw())
		assert.True(t, blk.Done())
	})

	t.Run("should match the closer of the pair that opened", func(t *testing.T) {
		blk := m.Begin(line(`\[`))
		blk = m.Continue(line("$$"), blk)
		require.NotNil(t, blk)
		assert.False(t, blk.Done())
		blk = m.Continue(line(`\]`), blk)
		assert.True(t, blk.Done())
	})

	t.Run("should keep trailing text on the closing line", func(t *testing.T) {
		blk := feed(t, m, "$$", "a+b", "$$ and on")
		assert.Equal(t, "$$\na+b\n$$ and on", blk.(*MathBlock).Raw())
	})

	t.Run("should replay pending blanks into the body", func(t *testing.T) {
		blk := m.Begin(line("$$"))
		blk = m.Continue(line(""), blk)
		require.NotNil(t, blk)
		assert.True(t, blk.Interrupted())
		blk = m.Continue(line("x"), blk)
		assert.False(t, blk.Interrupted())
		blk = m.Continue(line("$$"), blk)
		assert.Equal(t, "$$\n\nx\n$$", blk.(*MathBlock).Raw())
	})

	t.Run("should refuse lines after completion", func(t *testing.T) {
		blk := feed(t, m, "$$", "x", "$$")
		assert.Nil(t, m.Continue(line("more"), blk))
	})

	t.Run("should end unterminated blocks at completion without error", func(t *testing.T) {
		blk := m.Begin(line("$$"))
		blk = m.Continue(line("never closed"), blk)
		blk = m.Complete(blk)
		assert.True(t, blk.Done())
		assert.Equal(t, "$$\nnever closed", blk.(*MathBlock).Raw())
	})
}
