package pdf

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkt.systems/rml/fonts"
)

const helloRML = `<?xml version="1.0" encoding="utf-8"?>
<document filename="hello.pdf">
  <template pageSize="(595, 842)" title="Hello">
    <pageTemplate id="main">
      <frame id="first" x1="72" y1="72" width="451" height="698"/>
    </pageTemplate>
  </template>
  <stylesheet/>
  <story>
    <para>Hello</para>
  </story>
</document>`

func renderString(t *testing.T, src string, cfg Config, fonts *FontRegistry, log *slog.Logger) []byte {
	t.Helper()
	var out bytes.Buffer
	err := Render(RenderRequest{
		Reader: strings.NewReader(src),
		Writer: &out,
		Config: cfg,
		Fonts:  fonts,
		Logger: log,
	})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF")), "unexpected pdf header: %q", out.Bytes()[:8])
	return out.Bytes()
}

func pageCount(data []byte) int {
	return bytes.Count(data, []byte("/Type /Page")) - bytes.Count(data, []byte("/Type /Pages"))
}

func uncompressed() Config {
	return Config{DisableCompression: true}
}

func TestRenderHello(t *testing.T) {
	data := renderString(t, helloRML, uncompressed(), nil, nil)
	assert.Equal(t, 1, pageCount(data))
	assert.Contains(t, string(data), "(Hello)")
	assert.Contains(t, string(data), "/Title")
}

func TestRenderBytesIsDeterministic(t *testing.T) {
	first, err := RenderBytes([]byte(helloRML), Config{}, nil)
	require.NoError(t, err)
	second, err := RenderBytes([]byte(helloRML), Config{}, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderCreationDate(t *testing.T) {
	data := renderString(t, helloRML, uncompressed(), nil, nil)
	assert.Contains(t, string(data), "D:20000101000000")

	cfg := uncompressed()
	cfg.CreationDate = time.Date(2024, time.March, 5, 10, 20, 30, 0, time.UTC)
	data = renderString(t, helloRML, cfg, nil, nil)
	assert.Contains(t, string(data), "D:20240305102030")
}

func TestRenderWithoutTemplateUsesMargins(t *testing.T) {
	src := `<document><story><para>Body text</para></story></document>`
	data := renderString(t, src, uncompressed(), nil, nil)
	assert.Equal(t, 1, pageCount(data))
	assert.Contains(t, string(data), "(Body text)")
}

func TestRenderEmptyStoryProducesOnePage(t *testing.T) {
	data := renderString(t, `<document><story/></document>`, uncompressed(), nil, nil)
	assert.Equal(t, 1, pageCount(data))
}

func TestRenderOverflowAddsPages(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<document><template pageSize="A5"><pageTemplate id="p"><frame id="f" x1="36" y1="36" width="348" height="300"/></pageTemplate></template><story>`)
	for i := 0; i < 60; i++ {
		fmt.Fprintf(&b, "<para>Paragraph %d with enough words to be a line of its own.</para>", i)
	}
	b.WriteString(`</story></document>`)
	data := renderString(t, b.String(), uncompressed(), nil, nil)
	assert.Greater(t, pageCount(data), 2)
	assert.Contains(t, string(data), "(Paragraph 59 with enough words to be a line of its own.)")
}

func TestRenderNextPageAndTemplates(t *testing.T) {
	src := `<document>
  <template>
    <pageTemplate id="first"><frame id="a" x1="72" y1="72" width="451" height="698"/></pageTemplate>
    <pageTemplate id="later">
      <pageGraphics><drawString x="72" y="40">Page <pageNumber/> of <pageCount/></drawString></pageGraphics>
      <frame id="b" x1="72" y1="72" width="451" height="698"/>
    </pageTemplate>
  </template>
  <story>
    <nextPage/>
    <para>One</para>
    <setNextTemplate name="later"/>
    <nextPage/>
    <para>Two</para>
    <nextPage/>
    <para>Three</para>
  </story>
</document>`
	data := renderString(t, src, uncompressed(), nil, nil)
	assert.Equal(t, 3, pageCount(data), "leading nextPage on an empty page is ignored")
	assert.Contains(t, string(data), "(2)")
	assert.Contains(t, string(data), "(3)")
	assert.NotContains(t, string(data), pageCountAlias)
}

func TestRenderShowBoundaryAddsLayer(t *testing.T) {
	src := `<document><template showBoundary="1"><pageTemplate id="p"><frame id="f" x1="72" y1="72" width="451" height="698"/></pageTemplate></template><story><para>x</para></story></document>`
	data := renderString(t, src, uncompressed(), nil, nil)
	assert.Contains(t, string(data), "/OCProperties")
}

func TestRenderUnknownFontFallsBack(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	src := `<document><story><para fontName="NoSuchFace">Fallback text</para><para fontName="NoSuchFace">Again</para></story></document>`
	data := renderString(t, src, uncompressed(), nil, log)
	assert.Contains(t, string(data), "(Fallback text)")
	assert.Equal(t, 1, strings.Count(logs.String(), "NoSuchFace"), "warning is logged once per face")
}

func TestRenderCIDFontWithoutSourceWarns(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	src := `<document>
  <docinit><registerCIDFont faceName="STSong-Light"/></docinit>
  <story><para fontName="STSong-Light">Hello</para></story>
</document>`
	renderString(t, src, uncompressed(), NewFontRegistry(), log)
	assert.Contains(t, logs.String(), "STSong-Light")
	assert.Contains(t, logs.String(), "level=WARN")
}

// installedFont returns a TrueType file on this host that the renderer can
// embed.
func installedFont(t *testing.T) string {
	t.Helper()
	idx, err := fonts.BuildIndex(fonts.DefaultDirs())
	if err != nil {
		t.Skipf("no font directories: %v", err)
	}
	for _, name := range []string{"DejaVuSans.ttf", "LiberationSans-Regular.ttf", "NotoSans-Regular.ttf", "FreeSans.ttf"} {
		path, ok := idx.Lookup(name)
		if !ok {
			continue
		}
		if _, err := fonts.Probe(path); err == nil {
			return path
		}
	}
	t.Skip("no common TrueType font installed")
	return ""
}

func TestRenderInstalledTrueType(t *testing.T) {
	path := installedFont(t)
	reg := NewFontRegistry()
	require.NoError(t, reg.RegisterTTF("Host", path))

	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	src := `<document><story><para fontName="Host">plain <b>bold</b> <i>italic</i></para></story></document>`
	data := renderString(t, src, uncompressed(), reg, log)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Equal(t, 1, strings.Count(logs.String(), "bold and italic not available"))
}

func TestRenderMissingTTFFails(t *testing.T) {
	src := `<document>
  <docinit><registerTTFont faceName="Custom" fileName="missing.ttf"/></docinit>
  <story><para>x</para></story>
</document>`
	cfg := Config{BaseDir: t.TempDir()}
	_, err := RenderBytes([]byte(src), cfg, nil)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "pdf render: "), err.Error())
	assert.Contains(t, err.Error(), "Custom")
}

func TestRenderDoesNotMutateRegistry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "face.ttf")
	require.NoError(t, os.WriteFile(path, []byte("not a font"), 0o600))
	reg := NewFontRegistry()
	src := `<document><docinit><registerTTFont faceName="Face" fileName="face.ttf"/></docinit><story><para>x</para></story></document>`
	_, _ = RenderBytes([]byte(src), Config{BaseDir: dir}, reg)
	assert.False(t, reg.Has("Face"))
}

func TestRenderRejectsInvalidTrueType(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "face.ttf"), []byte("not a font"), 0o600))
	src := `<document><docinit><registerTTFont faceName="Face" fileName="face.ttf"/></docinit><story><para fontName="Face">x</para></story></document>`
	_, err := RenderBytes([]byte(src), Config{BaseDir: dir}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `font "Face"`)
}

func TestRenderTable(t *testing.T) {
	src := `<document>
  <stylesheet>
    <blockTableStyle id="t">
      <blockBackground colorName="lightgrey" start="0,0" stop="-1,0"/>
      <lineStyle kind="GRID" colorName="black" thickness="0.5"/>
    </blockTableStyle>
  </stylesheet>
  <story>
    <blockTable colWidths="2in,1in" style="t">
      <tr><th>Name</th><th>Qty</th></tr>
      <tr><td>Apple</td><td>3</td></tr>
    </blockTable>
  </story>
</document>`
	data := renderString(t, src, uncompressed(), nil, nil)
	for _, want := range []string{"(Name)", "(Qty)", "(Apple)", "(3)"} {
		assert.Contains(t, string(data), want)
	}
}

func TestRenderTableRepeatsHeaderRows(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<document><template><pageTemplate id="p"><frame id="f" x1="72" y1="72" width="451" height="200"/></pageTemplate></template><story><blockTable repeatRows="1"><tr><td>HeaderCell</td></tr>`)
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "<tr><td>row %d</td></tr>", i)
	}
	b.WriteString(`</blockTable></story></document>`)
	data := renderString(t, b.String(), uncompressed(), nil, nil)
	pages := pageCount(data)
	require.Greater(t, pages, 1)
	assert.Equal(t, pages, strings.Count(string(data), "(HeaderCell)"))
}

func TestRenderPlaceTruncatesOverflow(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	src := `<document><template><pageTemplate id="p">
  <pageGraphics><place x="72" y="700" width="200" height="20"><para>first</para><para>second</para><para>third</para></place></pageGraphics>
  <frame id="f" x1="72" y1="72" width="451" height="500"/>
</pageTemplate></template><story><para>body</para></story></document>`
	data := renderString(t, src, uncompressed(), nil, log)
	assert.Contains(t, string(data), "(first)")
	assert.NotContains(t, string(data), "(third)")
	assert.Contains(t, logs.String(), "truncated")
}

func TestRenderInlineStyles(t *testing.T) {
	src := `<document><story><para>plain <b>bold</b> <i>italic</i> <u>under</u> <strike>gone</strike> x<super>2</super> <a href="https://example.com">link</a></para></story></document>`
	data := renderString(t, src, uncompressed(), nil, nil)
	s := string(data)
	for _, want := range []string{"(plain ", "(bold", "(italic", "(under", "(gone", "(2", "https://example.com"} {
		assert.Contains(t, s, want)
	}
	assert.Contains(t, s, "Helvetica-Bold")
	assert.Contains(t, s, "Helvetica-Oblique")
}

func TestRenderGraphics(t *testing.T) {
	src := `<document><template><pageTemplate id="p">
  <pageGraphics>
    <fill color="red"/><stroke color="blue"/>
    <rect x="10" y="10" width="50" height="20" fill="1" round="4"/>
    <circle x="100" y="100" radius="10"/>
    <lines>10 10 100 10 100 10 100 100</lines>
    <setFont name="Courier" size="8"/>
    <drawCentredString x="297" y="20">centred</drawCentredString>
  </pageGraphics>
  <frame id="f" x1="72" y1="72" width="451" height="698"/>
</pageTemplate></template><story/></document>`
	data := renderString(t, src, uncompressed(), nil, nil)
	assert.Contains(t, string(data), "(centred)")
	assert.Contains(t, string(data), "Courier")
}

func TestRenderErrors(t *testing.T) {
	err := Render(RenderRequest{Writer: &bytes.Buffer{}})
	require.EqualError(t, err, "pdf render: reader is nil")
	err = Render(RenderRequest{Reader: strings.NewReader("<document/>")})
	require.EqualError(t, err, "pdf render: writer is nil")

	_, err = RenderBytes([]byte("<document><story>"), Config{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdf render: rml: line")

	_, err = RenderBytes([]byte(helloRML), Config{PageSize: "nonsense"}, nil)
	require.NoError(t, err, "template page size wins over config")

	_, err = RenderBytes([]byte(`<document><story/></document>`), Config{PageSize: "nonsense"}, nil)
	require.Error(t, err)

	nan := `<document><template><pageTemplate id="p"><frame x1="NaN" y1="0" width="Inf" height="100"/></pageTemplate></template><story><para>x</para></story></document>`
	_, err = RenderBytes([]byte(nan), Config{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid length")
}

func TestApplyConfig(t *testing.T) {
	cfg := DefaultConfig()
	applyConfig(&cfg, Config{PageSize: "letter", FontName: "Times-Roman", DisableCompression: true})
	assert.Equal(t, "letter", cfg.PageSize)
	assert.Equal(t, "Times-Roman", cfg.FontName)
	assert.True(t, cfg.DisableCompression)
	assert.Equal(t, 72.0, cfg.Margin)
	assert.Equal(t, "rml2pdf", cfg.Creator)
}
