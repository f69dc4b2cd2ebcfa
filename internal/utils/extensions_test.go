package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseExtensions(t *testing.T) {
	tests := []struct {
		input    []string
		expected []string
	}{
		{[]string{".html"}, []string{".html"}},
		{[]string{"html"}, []string{".html"}},
		{[]string{"html", ".css", "js"}, []string{".html", ".css", ".js"}},
		{[]string{"html, .css,js"}, []string{".html", ".css", ".js"}},
		{[]string{".html", "html", ".HTML"}, []string{".html", ".HTML"}},
		{[]string{"", " ", ".", ","}, []string{}},
		{[]string{}, []string{}},
		{nil, []string{}},
		{[]string{".min.js"}, []string{".min.js"}},
	}

	for _, test := range tests {
		result := ParseExtensions(test.input)
		assert.Equal(t, test.expected, result, "ParseExtensions(%q)", test.input)
	}
}

func TestOverlap(t *testing.T) {
	tests := []struct {
		name string
		a    []string
		b    []string
		want []string
	}{
		{"disjoint", []string{".html", ".css"}, []string{".ico"}, nil},
		{"one shared", []string{".html", ".ico"}, []string{".png", ".ico"}, []string{".ico"}},
		{"case sensitive", []string{".ico"}, []string{".ICO"}, nil},
		{"empty", nil, []string{".ico"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlap(tt.a, tt.b))
		})
	}
}

func TestHasSuffixIn(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		exts    []string
		wantExt string
		wantOK  bool
	}{
		{"matches", "index.html", []string{".css", ".html"}, ".html", true},
		{"no match", "logo.png", []string{".css", ".html"}, "", false},
		{"case sensitive", "INDEX.HTML", []string{".html"}, "", false},
		{"bare extension is not a match", ".html", []string{".html"}, "", false},
		{"first match wins", "app.min.js", []string{".js", ".min.js"}, ".js", true},
		{"already compressed", "app.js.gz", []string{".js"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, ok := HasSuffixIn(tt.file, tt.exts)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantExt, ext)
		})
	}
}
