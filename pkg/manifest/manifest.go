// SPDX-License-Identifier: MPL-2.0

// Package manifest computes the JAR manifest attributes of a module and
// renders them in MANIFEST.MF syntax.
package manifest

import (
	"bytes"
	"io"
	"strings"
	"unicode"
)

const (
	// AttrManifestVersion is always the first main attribute.
	AttrManifestVersion = "Manifest-Version"
	// AttrImplementationTitle carries the module name.
	AttrImplementationTitle = "Implementation-Title"
	// AttrImplementationVersion carries the module version.
	AttrImplementationVersion = "Implementation-Version"
	// AttrAutomaticModuleName carries the module-path name.
	AttrAutomaticModuleName = "Automatic-Module-Name"

	maxLineBytes = 72
)

type (
	// Attribute is one name/value pair.
	Attribute struct {
		Name  string `json:"name" yaml:"name"`
		Value string `json:"value" yaml:"value"`
	}

	// Manifest holds attributes in emission order.
	Manifest struct {
		Attributes []Attribute `json:"attributes" yaml:"attributes"`
	}
)

// For returns the manifest of a module.
func For(name, version string) Manifest {
	return Manifest{Attributes: []Attribute{
		{Name: AttrImplementationTitle, Value: name},
		{Name: AttrImplementationVersion, Value: version},
		{Name: AttrAutomaticModuleName, Value: ModuleName(name)},
	}}
}

// ModuleName normalizes an artifact name into a module-path identifier:
// every rune that cannot appear in a Java identifier becomes ".", runs of
// dots collapse, and a segment starting with a digit gets a "_" prefix.
func ModuleName(artifact string) string {
	var b strings.Builder
	for _, r := range artifact {
		if isIdentRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('.')
		}
	}

	var segments []string
	for seg := range strings.SplitSeq(b.String(), ".") {
		if seg == "" {
			continue
		}
		if unicode.IsDigit([]rune(seg)[0]) {
			seg = "_" + seg
		}
		segments = append(segments, seg)
	}
	return strings.Join(segments, ".")
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Get returns the value of the named attribute.
func (m Manifest) Get(name string) (string, bool) {
	for _, a := range m.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// WriteTo renders the manifest as a MANIFEST.MF main section: the
// Manifest-Version header first, CRLF line endings, lines wrapped at 72
// bytes with single-space continuation lines, and a terminating blank line.
func (m Manifest) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	writeHeader(&buf, AttrManifestVersion, "1.0")
	for _, a := range m.Attributes {
		writeHeader(&buf, a.Name, a.Value)
	}
	buf.WriteString("\r\n")
	return buf.WriteTo(w)
}

// Bytes returns the MANIFEST.MF rendering.
func (m Manifest) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = m.WriteTo(&buf)
	return buf.Bytes()
}

func writeHeader(buf *bytes.Buffer, name, value string) {
	line := name + ": " + value
	limit := maxLineBytes
	for len(line) > limit {
		cut := limit
		// Never split a multi-byte rune across lines.
		for cut > 0 && !startsRune(line[cut]) {
			cut--
		}
		buf.WriteString(line[:cut])
		buf.WriteString("\r\n ")
		line = line[cut:]
		// The leading continuation space counts toward the limit.
		limit = maxLineBytes - 1
	}
	buf.WriteString(line)
	buf.WriteString("\r\n")
}

func startsRune(b byte) bool { return b&0xC0 != 0x80 }
