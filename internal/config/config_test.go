package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("page-size", "", "")
	fs.Bool("cjk", true, "")
	fs.StringSlice("cjk-lang", nil, "")
	fs.StringArray("font-dir", nil, "")
	fs.StringArray("font", nil, "")
	fs.Bool("compress", true, "")
	fs.BoolP("verbose", "v", false, "")
	return fs
}

func TestLoadDefaults(t *testing.T) {
	cfg, used, err := Load(LoadOptions{SearchPaths: []string{t.TempDir()}})
	require.NoError(t, err)
	assert.Empty(t, used)
	assert.Equal(t, "A4", cfg.PageSize)
	assert.True(t, cfg.CJK)
	assert.True(t, cfg.Compress)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, cfg.Fonts)
}

func TestLoadSearchesPaths(t *testing.T) {
	empty, dir := t.TempDir(), t.TempDir()
	path := writeFile(t, dir, "rml2pdf.yaml", "page_size: letter\ncjk: false\ncjk_languages: [ja]\nfonts:\n  - MyFace=/fonts/my.ttf\n")
	cfg, used, err := Load(LoadOptions{SearchPaths: []string{empty, dir}})
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "letter", cfg.PageSize)
	assert.False(t, cfg.CJK)
	assert.Equal(t, []string{"ja"}, cfg.CJKLanguages)

	specs, err := cfg.FontSpecs()
	require.NoError(t, err)
	assert.Equal(t, []FontSpec{{Name: "MyFace", Path: "/fonts/my.ttf"}}, specs)
}

func TestLoadFlagsOverrideFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "custom.yaml", "page_size: letter\ncompress: false\n")
	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--page-size", "A5", "--cjk-lang", "zh-Hant,ko", "-v"}))

	cfg, used, err := Load(LoadOptions{File: path, Flags: fs})
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "A5", cfg.PageSize)
	assert.False(t, cfg.Compress, "unchanged flags keep file values")
	assert.True(t, cfg.Verbose)
	assert.Equal(t, []string{"zh-Hant", "ko"}, cfg.CJKLanguages)
}

func TestLoadErrors(t *testing.T) {
	_, _, err := Load(LoadOptions{File: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)

	dir := t.TempDir()
	cases := map[string]string{
		"page size": "page_size: huge\n",
		"language":  "cjk_languages: ['not a tag!']\n",
		"font spec": "fonts: [NoPath]\n",
		"font dir":  "font_dirs: ['']\n",
		"syntax":    "page_size: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, dir, "bad.yaml", body)
			_, _, err := Load(LoadOptions{File: path})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config: ")
		})
	}
}

func TestParseFontSpec(t *testing.T) {
	spec, err := ParseFontSpec(" Face = /a=b/face.ttf ")
	require.NoError(t, err)
	assert.Equal(t, FontSpec{Name: "Face", Path: "/a=b/face.ttf"}, spec)

	for _, bad := range []string{"", "Face", "=path", "Face="} {
		_, err := ParseFontSpec(bad)
		assert.Error(t, err, bad)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Fonts = []string{"A=/a.ttf"}
	data, err := cfg.YAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "page_size: A4")

	var back Config
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, cfg, back)
}
