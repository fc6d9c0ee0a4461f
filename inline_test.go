package rml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstParaRuns(t *testing.T, body string) []Run {
	t.Helper()
	doc, err := ParseString("<document><story>" + body + "</story></document>")
	require.NoError(t, err)
	require.NotEmpty(t, doc.Story)
	para, ok := doc.Story[0].(*Paragraph)
	require.True(t, ok)
	return para.Runs
}

func TestInlineWhitespace(t *testing.T) {
	runs := firstParaRuns(t, "<para>\n  Hello   <b>bold</b>  world <br/> next&#160;line \n</para>")
	require.Len(t, runs, 5)
	assert.Equal(t, "Hello ", runs[0].Text)
	assert.Equal(t, "bold", runs[1].Text)
	assert.True(t, runs[1].Bold)
	assert.Equal(t, " world", runs[2].Text)
	assert.True(t, runs[3].LineBreak)
	assert.Equal(t, "next\u00a0line", runs[4].Text)
	assert.Equal(t, "Hello bold world\nnext\u00a0line", PlainText(runs))
}

func TestInlineBlankParagraph(t *testing.T) {
	runs := firstParaRuns(t, "<para>   \n\t </para>")
	assert.Empty(t, runs)
}

func TestInlineNestedStyles(t *testing.T) {
	runs := firstParaRuns(t, `<para><b>a<i>b</i></b><u>c</u><strike>d</strike>x<super>2</super><sub>3</sub></para>`)
	require.Len(t, runs, 7)
	assert.True(t, runs[0].Bold)
	assert.False(t, runs[0].Italic)
	assert.True(t, runs[1].Bold)
	assert.True(t, runs[1].Italic)
	assert.True(t, runs[2].Underline)
	assert.True(t, runs[3].Strike)
	assert.False(t, runs[4].Bold)
	assert.True(t, runs[5].Super)
	assert.True(t, runs[6].Sub)
	assert.False(t, runs[6].Super)
}

func TestInlineFontAndLinks(t *testing.T) {
	runs := firstParaRuns(t, `<para><font face="Courier" size="14" color="red">x</font> <a href="https://example.com">site</a></para>`)
	require.Len(t, runs, 3)
	assert.Equal(t, "Courier", runs[0].FontName)
	assert.Equal(t, 14.0, runs[0].FontSize)
	require.NotNil(t, runs[0].Color)
	assert.Equal(t, Color{255, 0, 0}, *runs[0].Color)
	assert.Equal(t, " ", runs[1].Text)
	assert.Equal(t, "https://example.com", runs[2].Link)
	assert.Equal(t, "site", runs[2].Text)
}

func TestInlineSpanStyle(t *testing.T) {
	doc, err := ParseString(`<document>
<stylesheet><paraStyle name="Mono" fontName="Courier" fontSize="9" textColor="blue"/></stylesheet>
<story><para>a <span style="Mono">b</span></para></story>
</document>`)
	require.NoError(t, err)
	runs := doc.Story[0].(*Paragraph).Runs
	require.Len(t, runs, 2)
	assert.Equal(t, "Courier", runs[1].FontName)
	assert.Equal(t, 9.0, runs[1].FontSize)
	assert.Equal(t, Color{0, 0, 255}, *runs[1].Color)

	_, err = ParseString(`<document><story><para><span style="Nope">b</span></para></story></document>`)
	require.Error(t, err)
}

func TestInlinePageNumbers(t *testing.T) {
	runs := firstParaRuns(t, `<para>Page <pageNumber/> of <pageCount/></para>`)
	require.Len(t, runs, 4)
	assert.Equal(t, "Page ", runs[0].Text)
	assert.True(t, runs[1].PageNumber)
	assert.Equal(t, " of ", runs[2].Text)
	assert.True(t, runs[3].PageCount)
}

func TestInlineUnknownTagKeepsText(t *testing.T) {
	doc, err := ParseString(`<document><story><para>a <blink>b</blink></para></story></document>`)
	require.NoError(t, err)
	assert.Equal(t, "a b", PlainText(doc.Story[0].(*Paragraph).Runs))
	assert.Equal(t, []string{"blink"}, doc.Skipped)
}

func TestCollapseSpace(t *testing.T) {
	assert.Equal(t, "a b", collapseSpace("a \t\n b", false))
	assert.Equal(t, "a ", collapseSpace("  a  ", true))
	assert.Equal(t, " a", collapseSpace(" a", false))
	assert.Equal(t, "\u00a0\u00a0x", collapseSpace("\u00a0\u00a0x", true))
}
