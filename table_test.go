package rml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableCommandRange(t *testing.T) {
	all := TableCommand{Start: Cell{0, 0}, Stop: Cell{-1, -1}}
	c0, r0, c1, r1, ok := all.Range(3, 4)
	require.True(t, ok)
	assert.Equal(t, []int{0, 0, 2, 3}, []int{c0, r0, c1, r1})

	lastCol := TableCommand{Start: Cell{-1, 0}, Stop: Cell{-1, -1}}
	c0, _, c1, _, ok = lastCol.Range(3, 4)
	require.True(t, ok)
	assert.Equal(t, 2, c0)
	assert.Equal(t, 2, c1)

	clipped := TableCommand{Start: Cell{0, 0}, Stop: Cell{10, 10}}
	_, _, c1, r1, ok = clipped.Range(3, 4)
	require.True(t, ok)
	assert.Equal(t, 2, c1)
	assert.Equal(t, 3, r1)

	empty := TableCommand{Start: Cell{5, 0}, Stop: Cell{-1, -1}}
	_, _, _, _, ok = empty.Range(3, 4)
	assert.False(t, ok)

	body := TableCommand{Start: Cell{1, 1}, Stop: Cell{-1, -1}}
	assert.True(t, body.Contains(1, 1, 3, 4))
	assert.True(t, body.Contains(2, 3, 3, 4))
	assert.False(t, body.Contains(0, 1, 3, 4))
	assert.False(t, empty.Contains(0, 0, 3, 4))
}

func TestParseCell(t *testing.T) {
	c, err := parseCell("(1, -2)")
	require.NoError(t, err)
	assert.Equal(t, Cell{Col: 1, Row: -2}, c)

	c, err = parseCell("0,0")
	require.NoError(t, err)
	assert.Equal(t, Cell{}, c)

	for _, bad := range []string{"1", "a,b", "1,2,3", "1,x"} {
		_, err := parseCell(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseTable(t *testing.T) {
	doc, err := ParseString(`<document>
<stylesheet>
  <blockTableStyle id="grid">
    <blockFont name="Helvetica-Bold" size="9" start="0,0" stop="-1,0"/>
    <lineStyle kind="OUTLINE" colorName="navy" thickness="0.5"/>
    <blockLeftPadding length="4" start="(1,1)" stop="(-1,-1)"/>
  </blockTableStyle>
</stylesheet>
<story>
  <blockTable style="grid" colWidths="1in,*" repeatRows="5">
    <blockTableStyle id="local">
      <blockBackground colorName="#eeeeee" start="0,0" stop="-1,0"/>
      <blockValign value="middle"/>
    </blockTableStyle>
    <tr><th>Name</th><td>Value</td></tr>
    <tr><td><para>nested</para></td><td>  plain   text </td></tr>
  </blockTable>
</story>
</document>`)
	require.NoError(t, err)
	tbl := doc.Story[0].(*Table)
	assert.Equal(t, []float64{72, 0}, tbl.ColWidths)
	assert.Equal(t, 2, tbl.RepeatRows)
	assert.Equal(t, 2, tbl.Columns())

	cmds := tbl.Style.Commands
	require.Len(t, cmds, 5)
	assert.Equal(t, OpFont, cmds[0].Op)
	assert.Equal(t, "Helvetica-Bold", cmds[0].FontName)
	assert.Equal(t, 9.0, cmds[0].FontSize)
	assert.Equal(t, Cell{-1, 0}, cmds[0].Stop)

	assert.Equal(t, OpBox, cmds[1].Op)
	assert.Equal(t, Color{0, 0, 128}, cmds[1].Color)
	assert.Equal(t, 0.5, cmds[1].Thickness)
	assert.Equal(t, Cell{-1, -1}, cmds[1].Stop)

	assert.Equal(t, OpPadding, cmds[2].Op)
	assert.Equal(t, "left", cmds[2].PaddingSide)
	assert.Equal(t, 4.0, cmds[2].Padding)
	assert.Equal(t, Cell{1, 1}, cmds[2].Start)

	assert.Equal(t, OpBackground, cmds[3].Op)
	assert.Equal(t, Color{0xee, 0xee, 0xee}, cmds[3].Color)
	assert.Equal(t, OpVAlign, cmds[4].Op)
	assert.Equal(t, VAlignMiddle, cmds[4].VAlign)

	require.Len(t, tbl.Rows, 2)
	assert.True(t, tbl.Rows[0][0].Header)
	assert.Equal(t, "Name", PlainText(tbl.Rows[0][0].Runs))
	assert.Len(t, tbl.Rows[1][0].Flowables, 1)
	assert.Nil(t, tbl.Rows[1][0].Runs)
	assert.Equal(t, "plain text", PlainText(tbl.Rows[1][1].Runs))

	// The stylesheet copy is not modified by inline commands.
	grid, ok := doc.Stylesheet.Table("grid")
	require.True(t, ok)
	assert.Len(t, grid.Commands, 3)
}

func TestParseTableErrors(t *testing.T) {
	cases := map[string]string{
		"no rows":       `<blockTable colWidths="10"/>`,
		"unknown style": `<blockTable style="nope"><tr><td>x</td></tr></blockTable>`,
		"line kind":     `<blockTable><blockTableStyle id="s"><lineStyle kind="ZIGZAG"/></blockTableStyle><tr><td>x</td></tr></blockTable>`,
		"bad cell":      `<blockTable><blockTableStyle id="s"><blockFont name="Courier" start="x"/></blockTableStyle><tr><td>x</td></tr></blockTable>`,
		"repeat rows":   `<blockTable repeatRows="-1"><tr><td>x</td></tr></blockTable>`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseString("<document><story>" + body + "</story></document>")
			require.Error(t, err)
		})
	}
}
